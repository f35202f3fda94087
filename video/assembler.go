package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/drewmudry/slideshorts/render"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
)

const (
	// MinClipDuration is the shortest time any frame is held on screen,
	// regardless of how narrow its caption window was.
	MinClipDuration = 0.8

	FPS = 24

	// FrameDirPattern names the per-job scratch directory for frame images.
	FrameDirPattern = ".frames-*"
)

// Clip is one frame and how long its caption wants it on screen.
type Clip struct {
	Frame    image.Image
	Duration float64
}

// HoldDuration is how long a clip is actually held.
func HoldDuration(d float64) float64 {
	return math.Max(MinClipDuration, d)
}

// TotalDuration sums the held durations of clips.
func TotalDuration(clips []Clip) float64 {
	total := 0.0
	for _, c := range clips {
		total += HoldDuration(c.Duration)
	}
	return total
}

// Assembler concatenates still clips into a single MP4 using ffmpeg.
type Assembler struct {
	ffmpegPath string
	runner     commandRunner
	logger     hclog.Logger
	mkdirTemp  func(dir, pattern string) (string, error)
	removeAll  func(path string) error
	remove     func(name string) error
	stat       func(name string) (os.FileInfo, error)
}

func NewAssembler(ffmpegPath string, logger hclog.Logger) *Assembler {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Assembler{
		ffmpegPath: ffmpegPath,
		runner:     &execRunner{},
		logger:     logger,
		mkdirTemp:  os.MkdirTemp,
		removeAll:  os.RemoveAll,
		remove:     os.Remove,
		stat:       os.Stat,
	}
}

// Assemble writes clips in order to outPath. There is no retry; on failure
// the partial output is removed.
func (a *Assembler) Assemble(ctx context.Context, clips []Clip, outPath string) error {
	if len(clips) == 0 {
		return &AssembleError{Message: "no clips to assemble"}
	}

	outDir := filepath.Dir(outPath)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return &AssembleError{Message: fmt.Sprintf("cannot create output directory: %s", outDir), Err: err}
	}

	workDir, err := a.mkdirTemp(outDir, FrameDirPattern)
	if err != nil {
		return &AssembleError{Message: "failed to create frame directory", Err: err}
	}
	defer func() { _ = a.removeAll(workDir) }()

	entries := make([]concatEntry, 0, len(clips))
	for i, clip := range clips {
		name := fmt.Sprintf("frame_%03d.jpg", i)
		if err := imaging.Save(Letterbox(clip.Frame), filepath.Join(workDir, name), imaging.JPEGQuality(92)); err != nil {
			return &AssembleError{Message: fmt.Sprintf("failed to write frame %d", i), Err: err}
		}
		entries = append(entries, concatEntry{File: name, Duration: HoldDuration(clip.Duration)})
	}

	listPath := filepath.Join(workDir, "clips.ffconcat")
	if err := os.WriteFile(listPath, []byte(buildConcatList(entries)), 0o644); err != nil {
		return &AssembleError{Message: "failed to write concat list", Err: err}
	}

	args := buildFFmpegArgs(listPath, outPath)
	a.logger.Info("encoding video", "clips", len(clips), "seconds", TotalDuration(clips), "out", outPath)

	res, runErr := a.runner.Run(ctx, a.ffmpegPath, args...)
	cmdLog := CommandLog{
		Command:  a.ffmpegPath,
		Args:     args,
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}
	if runErr != nil {
		a.discard(outPath)
		return &AssembleError{Message: "ffmpeg encoding failed", CommandLog: cmdLog, Err: runErr}
	}

	info, err := a.stat(outPath)
	if err != nil {
		return &AssembleError{Message: "ffmpeg completed but output file is missing", CommandLog: cmdLog, Err: err}
	}
	a.logger.Info("video written", "out", outPath, "size", humanize.Bytes(uint64(info.Size())))
	return nil
}

func (a *Assembler) discard(outPath string) {
	if err := a.remove(outPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		a.logger.Warn("failed to remove partial output", "out", outPath, "error", err)
	}
}

// Letterbox scales img to fit the output frame, preserving aspect ratio,
// and centres it on black. Frames already at output size pass through.
func Letterbox(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() == render.Width && b.Dy() == render.Height {
		return img
	}
	scale := math.Min(float64(render.Width)/float64(b.Dx()), float64(render.Height)/float64(b.Dy()))
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))
	fitted := imaging.Resize(img, w, h, imaging.Lanczos)
	return imaging.PasteCenter(imaging.New(render.Width, render.Height, color.Black), fitted)
}

type concatEntry struct {
	File     string
	Duration float64
}

// buildConcatList renders an ffconcat script. The last file is listed twice
// because the concat demuxer ignores the final entry's duration otherwise.
func buildConcatList(entries []concatEntry) string {
	var sb strings.Builder
	sb.WriteString("ffconcat version 1.0\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "file '%s'\n", e.File)
		fmt.Fprintf(&sb, "duration %s\n", strconv.FormatFloat(e.Duration, 'f', 3, 64))
	}
	if len(entries) > 0 {
		fmt.Fprintf(&sb, "file '%s'\n", entries[len(entries)-1].File)
	}
	return sb.String()
}

// buildFFmpegArgs builds a 24fps H.264 encode with a silent AAC track,
// padded to the portrait output size.
func buildFFmpegArgs(listPath, outPath string) []string {
	size := fmt.Sprintf("%d:%d", render.Width, render.Height)
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-f", "lavfi",
		"-i", "anullsrc=channel_layout=stereo:sample_rate=44100",
		"-vf", fmt.Sprintf("scale=%s:force_original_aspect_ratio=decrease,pad=%s:(ow-iw)/2:(oh-ih)/2,setsar=1", size, size),
		"-r", strconv.Itoa(FPS),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-shortest",
		"-movflags", "+faststart",
		outPath,
	}
}
