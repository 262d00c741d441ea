package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
)

// IndexJob is the payload of one asynchronous indexing request.
type IndexJob struct {
	ChannelID         string `json:"channel_id"`
	UploadsPlaylistID string `json:"uploads_playlist_id"`
}

// IDispatcher hands an indexing job to a background worker. A failed
// dispatch is recoverable; callers fall back to running the job inline.
type IDispatcher interface {
	DispatchIndexJob(ctx context.Context, job IndexJob) error
}

func encodeJob(job IndexJob) ([]byte, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encode index job: %w", err)
	}
	return payload, nil
}

func decodeJob(payload []byte) (IndexJob, error) {
	var job IndexJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return IndexJob{}, fmt.Errorf("decode index job: %w", err)
	}
	return job, nil
}
