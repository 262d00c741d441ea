package dto

import "nosbot/domain/model"

// GeneratePlaylistRequest is the POST /api/playlists/generate body.
type GeneratePlaylistRequest struct {
	ChannelID string                `json:"channel_id" binding:"required"`
	Filters   model.PlaylistFilters `json:"filters"`
	Count     int                   `json:"count"`
	Shuffle   *bool                 `json:"shuffle"`
}

// PlaylistVideo is one entry of a generated playlist, in watch order.
// ViewCount is the raw count as a decimal string; ViewCountText is the
// compact display form ("1.5M").
type PlaylistVideo struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	PublishedAt   string `json:"published_at"`
	Duration      int    `json:"duration"`
	ViewCount     string `json:"view_count"`
	ViewCountText string `json:"view_count_text"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`
}

// GeneratedPlaylistResponse is the generation result. PlaylistID is a
// persisted record id for authenticated users, or a temp_ token otherwise.
type GeneratedPlaylistResponse struct {
	PlaylistID  string          `json:"playlist_id"`
	WatchURL    string          `json:"watch_url"`
	Videos      []PlaylistVideo `json:"videos"`
	AIReasoning string          `json:"ai_reasoning,omitempty"`
}

// PlaylistHistoryItem is one saved playlist in GET /api/playlists.
type PlaylistHistoryItem struct {
	ID         string                `json:"id"`
	VideoIDs   []string              `json:"video_ids"`
	VideoCount int                   `json:"video_count"`
	Filters    model.PlaylistFilters `json:"filters"`
	WatchURL   string                `json:"watch_url"`
	ChannelID  string                `json:"channel_id"`
	Channel    *ChannelSummary       `json:"channel,omitempty"`
	CreatedAt  string                `json:"created_at"`
}

// ChannelSummary is the channel info attached to history entries.
type ChannelSummary struct {
	YouTubeID    string `json:"youtube_id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}
