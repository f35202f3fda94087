package worker

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/drewmudry/slideshorts/jobs"
	"github.com/drewmudry/slideshorts/models"
	"github.com/drewmudry/slideshorts/processing"
	"github.com/drewmudry/slideshorts/render"
	"github.com/drewmudry/slideshorts/tasks"
	"github.com/drewmudry/slideshorts/video"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompositor struct {
	captions []models.CaptionUnit
	bg       color.RGBA
	panicOn  string
}

func (f *fakeCompositor) Composite(c models.CaptionUnit, bg color.RGBA) *image.RGBA {
	if f.panicOn != "" && c.Text == f.panicOn {
		panic("glyph cache exploded")
	}
	f.captions = append(f.captions, c)
	f.bg = bg
	return image.NewRGBA(image.Rect(0, 0, 4, 4))
}

type fakeAssembler struct {
	ctxErr  error
	clips   []video.Clip
	outPath string
	err     error
}

func (f *fakeAssembler) Assemble(ctx context.Context, clips []video.Clip, outPath string) error {
	f.ctxErr = ctx.Err()
	f.clips = clips
	f.outPath = outPath
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outPath, []byte("mp4"), 0o644)
}

type recordingPublisher struct {
	events []tasks.JobEvent
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, event tasks.JobEvent) error {
	r.events = append(r.events, event)
	return r.err
}

type harness struct {
	proc       *Processor
	compositor *fakeCompositor
	assembler  *fakeAssembler
	publisher  *recordingPublisher
	dir        string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		compositor: &fakeCompositor{},
		assembler:  &fakeAssembler{},
		publisher:  &recordingPublisher{},
		dir:        t.TempDir(),
	}
	h.proc = NewProcessor(jobs.NewStore(), h.compositor, h.assembler, Options{
		StoreDir:  h.dir,
		Publisher: h.publisher,
	})
	return h
}

func TestSubmitSuccess(t *testing.T) {
	h := newHarness(t)
	id := h.proc.Submit(context.Background(), models.RenderRequest{Script: "你好。最近好嗎？再見！", Duration: 10})

	job, ok := h.proc.Jobs.Get(id)
	require.True(t, ok)
	assert.Equal(t, models.JobStatusDone, job.Status)
	assert.Equal(t, 1.0, job.Progress)
	assert.Equal(t, "/files/"+id+".mp4", job.URL)
	assert.Empty(t, job.Message)

	require.Len(t, h.assembler.clips, 3)
	for _, c := range h.assembler.clips {
		assert.InDelta(t, 10.0/3, c.Duration, 1e-9)
	}
	assert.Equal(t, []string{"你好", "最近好嗎", "再見"}, []string{
		h.compositor.captions[0].Text, h.compositor.captions[1].Text, h.compositor.captions[2].Text,
	})
	assert.Equal(t, render.DefaultBackground, h.compositor.bg)
	assert.Equal(t, filepath.Join(h.dir, id+".mp4"), h.assembler.outPath)
	assert.FileExists(t, h.assembler.outPath)

	require.Len(t, h.publisher.events, 1)
	assert.Equal(t, id, h.publisher.events[0].JobID)
	assert.Equal(t, "done", h.publisher.events[0].Status)
	assert.Equal(t, job.URL, h.publisher.events[0].URL)
}

func TestSubmitEncoderFailure(t *testing.T) {
	h := newHarness(t)
	h.assembler.err = errors.New("assemble: ffmpeg encoding failed (cmd=ffmpeg exit=1)")

	id := h.proc.Submit(context.Background(), models.RenderRequest{Script: "Hello.", Duration: 10})

	job, ok := h.proc.Jobs.Get(id)
	require.True(t, ok)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Equal(t, 1.0, job.Progress)
	assert.Contains(t, job.Message, "ffmpeg encoding failed")
	assert.Empty(t, job.URL)

	require.Len(t, h.publisher.events, 1)
	assert.Equal(t, "failed", h.publisher.events[0].Status)
	assert.NotEmpty(t, h.publisher.events[0].Message)
}

func TestSubmitRecoversStagePanic(t *testing.T) {
	h := newHarness(t)
	h.compositor.panicOn = "second"

	id := h.proc.Submit(context.Background(), models.RenderRequest{Script: "first, second, third"})

	job, _ := h.proc.Jobs.Get(id)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Contains(t, job.Message, "glyph cache exploded")
	assert.Nil(t, h.assembler.clips)
}

func TestSubmitInvalidBackgroundFails(t *testing.T) {
	h := newHarness(t)
	id := h.proc.Submit(context.Background(), models.RenderRequest{Script: "hi", Background: "#12"})

	job, _ := h.proc.Jobs.Get(id)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Contains(t, job.Message, "invalid colour")
	assert.Empty(t, h.compositor.captions)
}

func TestSubmitDefaults(t *testing.T) {
	h := newHarness(t)
	id := h.proc.Submit(context.Background(), models.RenderRequest{Script: "。！？", Background: "#ff0000"})

	job, _ := h.proc.Jobs.Get(id)
	require.Equal(t, models.JobStatusDone, job.Status)
	require.Len(t, h.compositor.captions, 1)
	assert.Equal(t, processing.DefaultScript, h.compositor.captions[0].Text)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, h.compositor.bg)
	require.Len(t, h.assembler.clips, 1)
	assert.Equal(t, float64(processing.DefaultDuration), h.assembler.clips[0].Duration)
}

func TestPublicURLUsesBase(t *testing.T) {
	p := NewProcessor(jobs.NewStore(), &fakeCompositor{}, &fakeAssembler{}, Options{
		StoreDir:      "/srv/videos",
		PublicBaseURL: "https://cdn.example.com/",
	})
	assert.Equal(t, "https://cdn.example.com/files/abc.mp4", p.PublicURL("abc"))
	assert.Equal(t, "/srv/videos/abc.mp4", p.OutPath("abc"))
}

func TestPublishFailureDoesNotAffectJob(t *testing.T) {
	h := newHarness(t)
	h.publisher.err = errors.New("redis down")

	id := h.proc.Submit(context.Background(), models.RenderRequest{Script: "hello"})
	job, _ := h.proc.Jobs.Get(id)
	assert.Equal(t, models.JobStatusDone, job.Status)
}

func TestProcessUnknownJobIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.proc.Process(context.Background(), "missing", models.RenderRequest{Script: "hi"})
	assert.Empty(t, h.compositor.captions)
	assert.Empty(t, h.publisher.events)
}

func TestHandleRenderTask(t *testing.T) {
	h := newHarness(t)
	payload, err := tasks.Marshal(tasks.RenderTaskPayload{Script: "one, two", Duration: 6})
	require.NoError(t, err)
	require.NoError(t, h.proc.HandleRenderTask(context.Background(), payload))
	assert.Len(t, h.assembler.clips, 2)

	h.assembler.err = errors.New("encoder gone")
	assert.ErrorContains(t, h.proc.HandleRenderTask(context.Background(), payload), "encoder gone")

	assert.Error(t, h.proc.HandleRenderTask(context.Background(), "{not json"))
}

func TestHandleRenderTaskIgnoresListenerCancellation(t *testing.T) {
	h := newHarness(t)
	payload, err := tasks.Marshal(tasks.RenderTaskPayload{Script: "one, two"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.proc.HandleRenderTask(ctx, payload))
	assert.NoError(t, h.assembler.ctxErr)
	assert.Len(t, h.assembler.clips, 2)
}

func TestRunLogsProgressFailures(t *testing.T) {
	h := newHarness(t)
	var buf strings.Builder
	h.proc.logger = hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Debug})

	// the job was never created, so every progress update is rejected
	require.NoError(t, h.proc.run(context.Background(), "ghost", models.RenderRequest{Script: "one, two"}))
	assert.Equal(t, 2, strings.Count(buf.String(), "cannot record progress"))
	assert.Contains(t, buf.String(), jobs.ErrNotFound.Error())
}
