package model

import "time"

// IndexStatus tracks the lifecycle of a channel's catalog indexing run.
type IndexStatus string

const (
	IndexStatusPending    IndexStatus = "PENDING"
	IndexStatusInProgress IndexStatus = "IN_PROGRESS"
	IndexStatusComplete   IndexStatus = "COMPLETE"
	IndexStatusFailed     IndexStatus = "FAILED"
)

// Channel represents an indexed creator catalog.
// IndexedVideoCount is authoritative and maintained by the indexer;
// TotalVideoCount comes from the upstream API and may be stale.
type Channel struct {
	ID                string      `json:"id"`
	YouTubeID         string      `json:"youtube_id"`
	Title             string      `json:"title"`
	Handle            string      `json:"handle,omitempty"`
	ThumbnailURL      string      `json:"thumbnail_url,omitempty"`
	UploadsPlaylistID string      `json:"uploads_playlist_id"`
	TotalVideoCount   int         `json:"total_video_count"`
	IndexedVideoCount int         `json:"indexed_video_count"`
	IndexStatus       IndexStatus `json:"index_status"`
	LastSyncedAt      *time.Time  `json:"last_synced_at,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}
