package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type JobStatus string

const (
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// Job is the tracked state of one render request. It is never persisted.
type Job struct {
	ID       string    `json:"job_id,omitempty"`
	Status   JobStatus `json:"status"`
	Progress float64   `json:"progress"`
	URL      string    `json:"url,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// RenderRequest is the body accepted by POST /v1/videos.
type RenderRequest struct {
	Script     string `json:"script"`
	Duration   int    `json:"duration"`
	Background string `json:"background,omitempty"` // "#rrggbb"
}

// UnmarshalJSON accepts duration as any JSON number or numeric string and
// truncates it to whole seconds.
func (r *RenderRequest) UnmarshalJSON(data []byte) error {
	type plain RenderRequest
	aux := struct {
		*plain
		Duration json.Number `json:"duration"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Duration == "" {
		return nil
	}
	f, err := strconv.ParseFloat(aux.Duration.String(), 64)
	if err != nil {
		return fmt.Errorf("duration %q: %w", aux.Duration, err)
	}
	r.Duration = int(math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Trunc(f))))
	return nil
}
