package model

import "time"

// Video is one unit of curatable content belonging to exactly one channel.
// ViewCount is int64 because popular uploads overflow 32-bit counters.
type Video struct {
	ID             string    `json:"id"`
	YouTubeVideoID string    `json:"youtube_video_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	ThumbnailURL   string    `json:"thumbnail_url,omitempty"`
	PublishedAt    time.Time `json:"published_at"`
	Duration       int       `json:"duration"` // whole seconds
	ViewCount      int64     `json:"view_count"`
	ChannelID      string    `json:"channel_id"`
}
