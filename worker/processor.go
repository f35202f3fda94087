package worker

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"time"

	"github.com/drewmudry/slideshorts/jobs"
	"github.com/drewmudry/slideshorts/models"
	"github.com/drewmudry/slideshorts/processing"
	"github.com/drewmudry/slideshorts/render"
	"github.com/drewmudry/slideshorts/tasks"
	"github.com/drewmudry/slideshorts/video"
	"github.com/hashicorp/go-hclog"
)

// FrameCompositor draws one caption frame.
type FrameCompositor interface {
	Composite(caption models.CaptionUnit, bg color.RGBA) *image.RGBA
}

// ClipAssembler encodes ordered clips into a video file.
type ClipAssembler interface {
	Assemble(ctx context.Context, clips []video.Clip, outPath string) error
}

// Share of the progress bar spent compositing; the rest is encoding.
const compositeShare = 0.5

type Options struct {
	StoreDir      string
	PublicBaseURL string
	Publisher     Publisher
	Logger        hclog.Logger
}

// Processor runs the render pipeline for a job and records the outcome in
// the job store.
type Processor struct {
	Jobs       *jobs.Store
	compositor FrameCompositor
	assembler  ClipAssembler
	publisher  Publisher
	storeDir   string
	publicBase string
	logger     hclog.Logger
	now        func() time.Time
}

func NewProcessor(store *jobs.Store, compositor FrameCompositor, assembler ClipAssembler, opts Options) *Processor {
	if opts.Publisher == nil {
		opts.Publisher = NopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	return &Processor{
		Jobs:       store,
		compositor: compositor,
		assembler:  assembler,
		publisher:  opts.Publisher,
		storeDir:   opts.StoreDir,
		publicBase: strings.TrimRight(opts.PublicBaseURL, "/"),
		logger:     opts.Logger,
		now:        time.Now,
	}
}

// FileName is the stored file name for a job's video.
func FileName(jobID string) string {
	return jobID + ".mp4"
}

func (p *Processor) OutPath(jobID string) string {
	return filepath.Join(p.storeDir, FileName(jobID))
}

func (p *Processor) PublicURL(jobID string) string {
	return p.publicBase + "/files/" + FileName(jobID)
}

// Submit issues a job id and renders the request before returning it. The
// caller learns the outcome through the job store.
func (p *Processor) Submit(ctx context.Context, req models.RenderRequest) string {
	jobID := p.Jobs.Create()
	p.Process(ctx, jobID, req)
	return jobID
}

// Process runs the pipeline for an existing job. Every failure, including a
// panic in a stage, ends as a failed job rather than an error to the caller.
func (p *Processor) Process(ctx context.Context, jobID string, req models.RenderRequest) {
	log := p.logger.With("job_id", jobID)
	if err := p.Jobs.MarkRunning(jobID); err != nil {
		log.Error("cannot start job", "error", err)
		return
	}

	started := p.now()
	if err := p.run(ctx, jobID, req); err != nil {
		log.Error("render failed", "error", err)
		if err := p.Jobs.MarkFailed(jobID, err.Error()); err != nil {
			log.Error("cannot record failure", "error", err)
		}
	} else {
		log.Info("render complete", "elapsed", p.now().Sub(started).Round(time.Millisecond))
		if err := p.Jobs.MarkDone(jobID, p.PublicURL(jobID)); err != nil {
			log.Error("cannot record completion", "error", err)
		}
	}

	p.announce(ctx, jobID)
}

func (p *Processor) run(ctx context.Context, jobID string, req models.RenderRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()

	req = processing.NormalizeRequest(req)
	bg, err := render.ParseHexColor(req.Background)
	if err != nil {
		return err
	}

	captions := processing.CaptionsFromScript(req.Script, req.Duration)
	p.logger.Debug("captions allocated", "job_id", jobID, "count", len(captions))

	clips := make([]video.Clip, 0, len(captions))
	for i, c := range captions {
		clips = append(clips, video.Clip{
			Frame:    p.compositor.Composite(c, bg),
			Duration: c.Duration(),
		})
		if err := p.Jobs.MarkProgress(jobID, 0.1+compositeShare*float64(i+1)/float64(len(captions))); err != nil {
			p.logger.Debug("cannot record progress", "job_id", jobID, "error", err)
		}
	}

	if err := p.assembler.Assemble(ctx, clips, p.OutPath(jobID)); err != nil {
		return err
	}
	return nil
}

func (p *Processor) announce(ctx context.Context, jobID string) {
	job, ok := p.Jobs.Get(jobID)
	if !ok {
		return
	}
	event := tasks.JobEvent{
		JobID:      jobID,
		Status:     string(job.Status),
		URL:        job.URL,
		Message:    job.Message,
		FinishedAt: p.now().UTC(),
	}
	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("failed to publish job event", "job_id", jobID, "error", err)
	}
}
