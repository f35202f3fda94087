package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/drewmudry/slideshorts/internal/platform"
	"github.com/drewmudry/slideshorts/tasks"
	"github.com/drewmudry/slideshorts/worker"
)

// The worker renders scripts that other services push to QueueVideoRender.
// Finished jobs are announced on ChannelVideoJobs; job state itself stays
// in this process.
func main() {
	cfg, err := platform.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := platform.NewLogger("worker", cfg.LogLevel)

	if err := cfg.EnsureStoreDir(); err != nil {
		log.Fatalf("Failed to create store dir: %v", err)
	}

	redisURL := cfg.RedisURL
	if redisURL == "" {
		redisURL = "localhost:6379"
	}
	rdb, err := platform.NewRedisClient(redisURL, logger.Named("redis"))
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer rdb.Close()

	processor := platform.NewProcessor(cfg, logger, worker.NewRedisPublisher(rdb))

	queue := worker.NewQueue(rdb, logger.Named("queue"))
	queue.Register(tasks.QueueVideoRender, processor.HandleRenderTask)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker started, waiting for queue tasks")
	if err := queue.Listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Worker stopped: %v", err)
	}
	logger.Info("worker shut down")
}
