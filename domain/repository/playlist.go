package repository

import (
	"context"
	"time"

	"nosbot/domain/model"
)

// IPlaylist defines persistence for generated playlists.
type IPlaylist interface {
	// Create stores the playlist and returns it with its generated id.
	Create(ctx context.Context, p *model.GeneratedPlaylist) (*model.GeneratedPlaylist, error)
	// ListByUser returns the user's playlists, newest first, up to limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]model.GeneratedPlaylist, error)
}

// IQuotaLog records upstream API unit costs for quota accounting.
// Recording is a side observation and must never gate behavior.
type IQuotaLog interface {
	Record(ctx context.Context, endpoint string, units int) error
	UsageSince(ctx context.Context, since time.Time) (int, error)
}
