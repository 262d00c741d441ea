package dto

import "time"

// ChannelLookupResponse is returned by GET /api/channels/lookup.
// Cached reports whether the channel came from the local store without an
// upstream call.
type ChannelLookupResponse struct {
	ChannelID         string `json:"channel_id"`
	Title             string `json:"title"`
	Handle            string `json:"handle,omitempty"`
	ThumbnailURL      string `json:"thumbnail_url,omitempty"`
	UploadsPlaylistID string `json:"uploads_playlist_id"`
	IndexStatus       string `json:"index_status"`
	IndexedVideoCount int    `json:"indexed_video_count"`
	TotalVideoCount   int    `json:"total_video_count"`
	Cached            bool   `json:"cached"`
}

// ChannelSearchResult is one entry of GET /api/channels/search.
type ChannelSearchResult struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Handle       string `json:"handle,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Description  string `json:"description,omitempty"`
}

// IndexingStatusResponse is the progress-poll payload.
type IndexingStatusResponse struct {
	IndexStatus       string     `json:"index_status"`
	IndexedVideoCount int        `json:"indexed_video_count"`
	TotalVideoCount   int        `json:"total_video_count"`
	LastSyncedAt      *time.Time `json:"last_synced_at,omitempty"`
}

// StartIndexingResponse reports how an index trigger was handled.
// Status is one of: started, already_complete, in_progress.
type StartIndexingResponse struct {
	Status            string `json:"status"`
	Message           string `json:"message,omitempty"`
	IndexedVideoCount int    `json:"indexed_video_count,omitempty"`
}
