package janitor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
	"github.com/robfig/cron/v3"
)

// DefaultFrameMaxAge is how old a frame scratch directory must be before it
// is treated as abandoned by a crashed render.
const DefaultFrameMaxAge = time.Hour

const frameDirPrefix = ".frames-"

// Result summarizes one sweep.
type Result struct {
	FrameDirs int
	Videos    int
	Bytes     int64
}

// Sweeper cleans the video store directory.
type Sweeper struct {
	dir         string
	retention   time.Duration
	frameMaxAge time.Duration
	logger      hclog.Logger
	now         func() time.Time
}

// New returns a sweeper for dir. A zero retention keeps videos forever.
func New(dir string, retention time.Duration, logger hclog.Logger) *Sweeper {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Sweeper{
		dir:         dir,
		retention:   retention,
		frameMaxAge: DefaultFrameMaxAge,
		logger:      logger,
		now:         time.Now,
	}
}

// Schedule runs Sweep on c at the given cron schedule.
func (s *Sweeper) Schedule(c *cron.Cron, schedule string) (cron.EntryID, error) {
	return c.AddFunc(schedule, func() {
		if _, err := s.Sweep(); err != nil {
			s.logger.Error("sweep failed", "dir", s.dir, "error", err)
		}
	})
}

// Sweep removes abandoned frame directories and expired videos.
func (s *Sweeper) Sweep() (Result, error) {
	var res Result
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res, nil
		}
		return res, err
	}

	now := s.now()
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		age := now.Sub(info.ModTime())

		switch {
		case entry.IsDir() && strings.HasPrefix(entry.Name(), frameDirPrefix):
			if age < s.frameMaxAge {
				continue
			}
			if err := os.RemoveAll(path); err != nil {
				s.logger.Warn("cannot remove frame dir", "path", path, "error", err)
				continue
			}
			res.FrameDirs++

		case !entry.IsDir() && filepath.Ext(entry.Name()) == ".mp4":
			if s.retention <= 0 || age < s.retention {
				continue
			}
			if err := os.Remove(path); err != nil {
				s.logger.Warn("cannot remove video", "path", path, "error", err)
				continue
			}
			res.Videos++
			res.Bytes += info.Size()
			s.logger.Debug("expired video removed", "path", path, "modified", humanize.Time(info.ModTime()))
		}
	}

	if res.FrameDirs > 0 || res.Videos > 0 {
		s.logger.Info("sweep complete",
			"frame_dirs", res.FrameDirs,
			"videos", res.Videos,
			"freed", humanize.Bytes(uint64(res.Bytes)))
	}
	return res, nil
}
