package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"nosbot/domain/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PlaylistRepository persists generated playlists for authenticated users.
type PlaylistRepository struct {
	db *sql.DB
}

func NewPlaylistRepository(db *sql.DB) *PlaylistRepository { return &PlaylistRepository{db: db} }

func (r *PlaylistRepository) Create(ctx context.Context, p *model.GeneratedPlaylist) (*model.GeneratedPlaylist, error) {
	filtersJSON, err := json.Marshal(p.Filters)
	if err != nil {
		return nil, fmt.Errorf("serialize playlist filters: %w", err)
	}

	saved := *p
	saved.ID = uuid.NewString()
	saved.CreatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO generated_playlists (id, video_ids, filters, watch_url, user_id, channel_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		saved.ID, pq.Array(saved.VideoIDs), filtersJSON, saved.WatchURL, saved.UserID, saved.ChannelID, saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create generated playlist: %w", err)
	}
	return &saved, nil
}

func (r *PlaylistRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.GeneratedPlaylist, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, video_ids, filters, watch_url, user_id, channel_id, created_at
		FROM generated_playlists WHERE user_id=$1
		ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	var playlists []model.GeneratedPlaylist
	for rows.Next() {
		var p model.GeneratedPlaylist
		var videoIDs pq.StringArray
		var filtersJSON []byte
		var owner sql.NullString

		if err := rows.Scan(&p.ID, &videoIDs, &filtersJSON, &p.WatchURL, &owner, &p.ChannelID, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.VideoIDs = videoIDs
		if owner.Valid {
			u := owner.String
			p.UserID = &u
		}
		if err := json.Unmarshal(filtersJSON, &p.Filters); err != nil {
			return nil, fmt.Errorf("decode playlist filters: %w", err)
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}
