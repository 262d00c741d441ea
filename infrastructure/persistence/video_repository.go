package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"nosbot/domain/model"

	"github.com/google/uuid"
)

// VideoRepository implements video persistence on PostgreSQL.
type VideoRepository struct {
	db *sql.DB
}

func NewVideoRepository(db *sql.DB) *VideoRepository { return &VideoRepository{db: db} }

// Upsert creates the video or refreshes its mutable fields. Publish date,
// duration and channel ownership are immutable once written.
func (r *VideoRepository) Upsert(ctx context.Context, v *model.Video) error {
	id := v.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO videos (id, youtube_video_id, title, description, thumbnail_url,
			published_at, duration, view_count, channel_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (youtube_video_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			thumbnail_url = EXCLUDED.thumbnail_url,
			view_count = EXCLUDED.view_count`,
		id, v.YouTubeVideoID, v.Title, nullIfEmpty(v.Description), nullIfEmpty(v.ThumbnailURL),
		v.PublishedAt, v.Duration, v.ViewCount, v.ChannelID)
	if err != nil {
		return fmt.Errorf("upsert video %s: %w", v.YouTubeVideoID, err)
	}
	return nil
}

// ListByChannel returns the channel's indexed videos in publish order,
// newest first. This is the "natural" order the generator preserves when
// shuffle is off.
func (r *VideoRepository) ListByChannel(ctx context.Context, channelID string) ([]model.Video, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, youtube_video_id, title, description, thumbnail_url,
			published_at, duration, view_count, channel_id
		FROM videos WHERE channel_id=$1 ORDER BY published_at DESC`, channelID)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []model.Video
	for rows.Next() {
		var v model.Video
		var desc, thumb sql.NullString
		if err := rows.Scan(&v.ID, &v.YouTubeVideoID, &v.Title, &desc, &thumb,
			&v.PublishedAt, &v.Duration, &v.ViewCount, &v.ChannelID); err != nil {
			return nil, err
		}
		if desc.Valid {
			v.Description = desc.String
		}
		if thumb.Valid {
			v.ThumbnailURL = thumb.String
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *VideoRepository) CountByChannel(ctx context.Context, channelID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM videos WHERE channel_id=$1`, channelID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return count, nil
}
