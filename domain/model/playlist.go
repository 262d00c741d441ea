package model

import "time"

// PlaylistFilters captures the user-supplied constraints for one generation
// request. A non-empty TopicPrompt switches selection into relevance mode and
// supersedes Keywords and DeepCuts for that request.
type PlaylistFilters struct {
	YearStart     *int     `json:"year_start,omitempty"`
	YearEnd       *int     `json:"year_end,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	MinDuration   *int     `json:"min_duration,omitempty"` // seconds
	MaxDuration   *int     `json:"max_duration,omitempty"` // seconds
	DeepCuts      bool     `json:"deep_cuts,omitempty"`
	ExcludeShorts bool     `json:"exclude_shorts,omitempty"`
	TopicPrompt   string   `json:"topic_prompt,omitempty"`
}

// GeneratedPlaylist is the persisted output artifact. VideoIDs is the watch
// order. UserID is nil for anonymous requests, which are never persisted.
type GeneratedPlaylist struct {
	ID        string          `json:"id"`
	VideoIDs  []string        `json:"video_ids"`
	Filters   PlaylistFilters `json:"filters"`
	WatchURL  string          `json:"watch_url"`
	UserID    *string         `json:"user_id,omitempty"`
	ChannelID string          `json:"channel_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// QuotaLog records the unit cost of one upstream API call.
type QuotaLog struct {
	ID        int64     `json:"id"`
	Endpoint  string    `json:"endpoint"`
	Units     int       `json:"units"`
	CreatedAt time.Time `json:"created_at"`
}
