package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gin-gonic/gin"
)

// IndexProgressEvent represents an SSE payload for indexing progress updates.
type IndexProgressEvent struct {
	Type              string `json:"type"`
	ChannelID         string `json:"channel_id"`
	Status            string `json:"status"`
	IndexedVideoCount int    `json:"indexed_video_count"`
	TotalVideoCount   int    `json:"total_video_count"`
}

// Hub maintains per-channel subscribers listening for indexing progress.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[chan IndexProgressEvent]struct{}
}

func NewIndexHub() *Hub {
	return &Hub{channels: make(map[string]map[chan IndexProgressEvent]struct{})}
}

// Serve registers an SSE stream for one channel's indexing progress.
func (h *Hub) Serve(c *gin.Context) {
	channelID := c.Param("channelId")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan IndexProgressEvent, 8)
	h.addSubscriber(channelID, ch)
	defer h.removeSubscriber(channelID, ch)

	// Initial comment to keep connection open
	c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: index_progress\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Hub) addSubscriber(channelID string, ch chan IndexProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.channels[channelID] == nil {
		h.channels[channelID] = make(map[chan IndexProgressEvent]struct{})
	}
	h.channels[channelID][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(channelID string, ch chan IndexProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.channels[channelID]; subs != nil {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.channels, channelID)
		}
	}
}

// BroadcastProgress fans the event out to the channel's subscribers without
// blocking the indexer.
func (h *Hub) BroadcastProgress(evt IndexProgressEvent) {
	h.mu.RLock()
	subs := h.channels[evt.ChannelID]
	for ch := range subs {
		select { // non-blocking
		case ch <- evt:
		default:
		}
	}
	h.mu.RUnlock()
}
