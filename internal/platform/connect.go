package platform

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/go-hclog"
)

// NewLogger returns a named logger writing to stderr at the given level.
// Unknown levels fall back to info.
func NewLogger(name, level string) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  lvl,
		Output: os.Stderr,
	})
}

// NewRedisClient initializes a Redis client from either a redis:// URL or a
// bare host:port address.
func NewRedisClient(redisURL string, logger hclog.Logger) (*redis.Client, error) {
	opts := &redis.Options{Addr: redisURL}
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not reachable yet", "addr", opts.Addr, "error", err)
	}

	logger.Info("redis client initialized", "addr", opts.Addr)
	return rdb, nil
}
