package repository

import (
	"context"
	"time"

	"nosbot/domain/model"
)

// IChannel defines persistence operations for channels.
type IChannel interface {
	GetByYouTubeID(ctx context.Context, youtubeID string) (*model.Channel, error)
	// GetByHandleOrYouTubeID supports cache-first lookup by either identifier.
	GetByHandleOrYouTubeID(ctx context.Context, query string) (*model.Channel, error)
	// Upsert inserts a channel or refreshes its mutable metadata
	// (title, handle, thumbnail, total video count) keyed by YouTube id.
	Upsert(ctx context.Context, ch *model.Channel) (*model.Channel, error)
	// UpdateProgress persists the running indexed-video total mid-run so
	// external observers can poll progress.
	UpdateProgress(ctx context.Context, youtubeID string, indexedCount int) error
	// UpdateStatus sets the index status unconditionally. lastSyncedAt is
	// stamped only when non-nil.
	UpdateStatus(ctx context.Context, youtubeID string, status model.IndexStatus, indexedCount int, lastSyncedAt *time.Time) error
	// TransitionStatus performs a conditional update (status = to WHERE
	// status IN from) and reports whether a row was claimed. This is the
	// cooperative lock that keeps two indexing runs off the same channel.
	TransitionStatus(ctx context.Context, youtubeID string, from []model.IndexStatus, to model.IndexStatus) (bool, error)
}

// IVideo defines persistence operations for indexed videos.
type IVideo interface {
	// Upsert creates the video or refreshes its mutable fields (title,
	// description, thumbnail, view count). PublishedAt and Duration are
	// immutable once set.
	Upsert(ctx context.Context, v *model.Video) error
	ListByChannel(ctx context.Context, channelID string) ([]model.Video, error)
	CountByChannel(ctx context.Context, channelID string) (int, error)
}
