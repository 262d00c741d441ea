package repository

import (
	"context"
	"time"

	"nosbot/domain/dto"
)

// ResolvedChannel is the upstream view of a channel, before persistence.
type ResolvedChannel struct {
	YouTubeID         string
	Title             string
	Handle            string
	ThumbnailURL      string
	UploadsPlaylistID string
	TotalVideoCount   int
}

// SourceVideo is one catalog entry as delivered by the upstream API, with
// duration already decoded to seconds.
type SourceVideo struct {
	YouTubeVideoID string
	Title          string
	Description    string
	ThumbnailURL   string
	PublishedAt    time.Time
	Duration       int
	ViewCount      int64
}

// VideoPage is one page of a channel's uploads. An empty NextPageToken
// means the catalog is exhausted.
type VideoPage struct {
	Videos        []SourceVideo
	NextPageToken string
}

// IVideoSource abstracts the upstream catalog API.
type IVideoSource interface {
	ResolveChannel(ctx context.Context, query string) (*ResolvedChannel, error)
	FetchChannelPage(ctx context.Context, uploadsPlaylistID, pageToken string) (*VideoPage, error)
	SearchChannels(ctx context.Context, query string) ([]dto.ChannelSearchResult, error)
}

// ICompletion is a single request/response call against a generative text
// model. Callers must treat any returned error the same as unusable output.
type ICompletion interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
