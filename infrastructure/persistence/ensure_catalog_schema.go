package persistence

import (
	"database/sql"
	"fmt"

	"nosbot/infrastructure/logger"
)

// EnsureCatalogSchema creates the channel/video/playlist/quota tables when
// they do not exist yet.
func EnsureCatalogSchema(db *sql.DB) error {
	ddls := []string{
		`CREATE TABLE IF NOT EXISTS channels (
			id TEXT PRIMARY KEY,
			youtube_id TEXT UNIQUE NOT NULL,
			title TEXT NOT NULL,
			handle TEXT,
			thumbnail_url TEXT,
			uploads_playlist_id TEXT NOT NULL,
			total_video_count INTEGER NOT NULL DEFAULT 0,
			indexed_video_count INTEGER NOT NULL DEFAULT 0,
			index_status TEXT NOT NULL DEFAULT 'PENDING',
			last_synced_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS videos (
			id TEXT PRIMARY KEY,
			youtube_video_id TEXT UNIQUE NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			thumbnail_url TEXT,
			published_at TIMESTAMPTZ NOT NULL,
			duration INTEGER NOT NULL DEFAULT 0,
			view_count BIGINT NOT NULL DEFAULT 0,
			channel_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS generated_playlists (
			id TEXT PRIMARY KEY,
			video_ids TEXT[] NOT NULL,
			filters JSONB NOT NULL,
			watch_url TEXT NOT NULL,
			user_id TEXT,
			channel_id TEXT NOT NULL REFERENCES channels(youtube_id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quota_log (
			id BIGSERIAL PRIMARY KEY,
			endpoint TEXT NOT NULL,
			units INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("ensure catalog schema: %w", err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_videos_channel_id ON videos(channel_id)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_published_at ON videos(published_at)`,
		`CREATE INDEX IF NOT EXISTS idx_generated_playlists_user_id ON generated_playlists(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_quota_log_created_at ON quota_log(created_at)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			logger.GetLogger().WithField("error", err).Warn("failed creating catalog index")
		}
	}

	return nil
}
