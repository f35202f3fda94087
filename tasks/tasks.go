package tasks

import (
	"encoding/json"
	"time"
)

// ---
// QUEUE AND CHANNEL DEFINITIONS
// ---
const (
	// QueueVideoRender holds render requests for the standalone worker.
	QueueVideoRender = "q_video_render"

	// ChannelVideoJobs receives a JobEvent whenever a job finishes.
	ChannelVideoJobs = "video_jobs"
)

// ---
// PAYLOADS
// ---

// RenderTaskPayload is pushed to QueueVideoRender.
type RenderTaskPayload struct {
	Script     string `json:"script"`
	Duration   int    `json:"duration"`
	Background string `json:"background,omitempty"`
}

// JobEvent is published on ChannelVideoJobs.
type JobEvent struct {
	JobID      string    `json:"job_id"`
	Status     string    `json:"status"`
	URL        string    `json:"url,omitempty"`
	Message    string    `json:"message,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// Marshal creates a JSON payload for a task or event.
func Marshal(payload interface{}) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
