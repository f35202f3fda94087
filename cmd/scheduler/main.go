package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/drewmudry/slideshorts/internal/platform"
	"github.com/drewmudry/slideshorts/janitor"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := platform.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := platform.NewLogger("scheduler", cfg.LogLevel)

	sweeper := janitor.New(cfg.StoreDir, cfg.RetentionPeriod(), logger.Named("janitor"))

	c := cron.New()
	if _, err := sweeper.Schedule(c, cfg.JanitorSchedule); err != nil {
		log.Fatalf("Invalid janitor schedule %q: %v", cfg.JanitorSchedule, err)
	}
	c.Start()
	defer c.Stop()

	// Sweep once at start so a restart after a crash cleans up immediately.
	if _, err := sweeper.Sweep(); err != nil {
		logger.Error("initial sweep failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("scheduler started", "schedule", cfg.JanitorSchedule, "retention", cfg.RetentionPeriod())
	<-ctx.Done()
}
