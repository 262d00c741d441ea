package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nosbot/domain/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ChannelRepository implements channel persistence on PostgreSQL.
type ChannelRepository struct {
	db *sql.DB
}

func NewChannelRepository(db *sql.DB) *ChannelRepository { return &ChannelRepository{db: db} }

const channelColumns = `id, youtube_id, title, handle, thumbnail_url, uploads_playlist_id,
	total_video_count, indexed_video_count, index_status, last_synced_at, created_at, updated_at`

func (r *ChannelRepository) GetByYouTubeID(ctx context.Context, youtubeID string) (*model.Channel, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE youtube_id=$1`, youtubeID)
	return scanChannel(row)
}

func (r *ChannelRepository) GetByHandleOrYouTubeID(ctx context.Context, query string) (*model.Channel, error) {
	handle := query
	if len(handle) == 0 || handle[0] != '@' {
		handle = "@" + handle
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE handle=$1 OR youtube_id=$2 LIMIT 1`,
		handle, query)
	return scanChannel(row)
}

// Upsert inserts the channel or refreshes its upstream-sourced metadata.
// Indexing progress fields are owned by the indexer and left untouched on
// conflict.
func (r *ChannelRepository) Upsert(ctx context.Context, ch *model.Channel) (*model.Channel, error) {
	now := time.Now().UTC()
	id := ch.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := ch.IndexStatus
	if status == "" {
		status = model.IndexStatusPending
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO channels (id, youtube_id, title, handle, thumbnail_url, uploads_playlist_id,
			total_video_count, indexed_video_count, index_status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,0,$8,$9,$9)
		ON CONFLICT (youtube_id) DO UPDATE SET
			title = EXCLUDED.title,
			handle = EXCLUDED.handle,
			thumbnail_url = EXCLUDED.thumbnail_url,
			total_video_count = EXCLUDED.total_video_count,
			updated_at = EXCLUDED.updated_at
		RETURNING `+channelColumns,
		id, ch.YouTubeID, ch.Title, nullIfEmpty(ch.Handle), nullIfEmpty(ch.ThumbnailURL),
		ch.UploadsPlaylistID, ch.TotalVideoCount, string(status), now)
	return scanChannel(row)
}

func (r *ChannelRepository) UpdateProgress(ctx context.Context, youtubeID string, indexedCount int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE channels SET indexed_video_count=$1, updated_at=$2 WHERE youtube_id=$3`,
		indexedCount, time.Now().UTC(), youtubeID)
	if err != nil {
		return fmt.Errorf("update channel progress: %w", err)
	}
	return nil
}

func (r *ChannelRepository) UpdateStatus(ctx context.Context, youtubeID string, status model.IndexStatus, indexedCount int, lastSyncedAt *time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE channels
		SET index_status=$1, indexed_video_count=$2, last_synced_at=COALESCE($3, last_synced_at), updated_at=$4
		WHERE youtube_id=$5`,
		string(status), indexedCount, lastSyncedAt, time.Now().UTC(), youtubeID)
	if err != nil {
		return fmt.Errorf("update channel status: %w", err)
	}
	return nil
}

// TransitionStatus claims the status transition atomically; it reports false
// when another run already holds the channel.
func (r *ChannelRepository) TransitionStatus(ctx context.Context, youtubeID string, from []model.IndexStatus, to model.IndexStatus) (bool, error) {
	states := make([]string, 0, len(from))
	for _, s := range from {
		states = append(states, string(s))
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE channels SET index_status=$1, updated_at=$2
		WHERE youtube_id=$3 AND index_status = ANY($4)`,
		string(to), time.Now().UTC(), youtubeID, pq.Array(states))
	if err != nil {
		return false, fmt.Errorf("transition channel status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func scanChannel(row *sql.Row) (*model.Channel, error) {
	ch := &model.Channel{}
	var handle, thumbnail sql.NullString
	var lastSynced sql.NullTime
	var status string

	err := row.Scan(&ch.ID, &ch.YouTubeID, &ch.Title, &handle, &thumbnail, &ch.UploadsPlaylistID,
		&ch.TotalVideoCount, &ch.IndexedVideoCount, &status, &lastSynced, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrChannelNotFound
		}
		return nil, err
	}

	ch.IndexStatus = model.IndexStatus(status)
	if handle.Valid {
		ch.Handle = handle.String
	}
	if thumbnail.Valid {
		ch.ThumbnailURL = thumbnail.String
	}
	if lastSynced.Valid {
		t := lastSynced.Time
		ch.LastSyncedAt = &t
	}
	return ch, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
