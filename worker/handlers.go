package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/drewmudry/slideshorts/models"
	"github.com/drewmudry/slideshorts/tasks"
)

// HandleRenderTask processes tasks from QueueVideoRender. A render that has
// started runs to completion even when the listener is shutting down.
func (p *Processor) HandleRenderTask(ctx context.Context, payload string) error {
	var task tasks.RenderTaskPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return fmt.Errorf("decode render task: %w", err)
	}

	jobID := p.Submit(context.WithoutCancel(ctx), models.RenderRequest{
		Script:     task.Script,
		Duration:   task.Duration,
		Background: task.Background,
	})

	job, _ := p.Jobs.Get(jobID)
	if job.Status == models.JobStatusFailed {
		return fmt.Errorf("job %s failed: %s", jobID, job.Message)
	}
	p.logger.Info("queued render complete", "job_id", jobID, "url", job.URL)
	return nil
}
