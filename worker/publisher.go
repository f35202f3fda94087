package worker

import (
	"context"

	"github.com/drewmudry/slideshorts/tasks"
	"github.com/go-redis/redis/v8"
)

// Publisher announces finished jobs.
type Publisher interface {
	Publish(ctx context.Context, event tasks.JobEvent) error
}

// RedisPublisher publishes job events on a Redis Pub/Sub channel.
type RedisPublisher struct {
	RDB     *redis.Client
	Channel string
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{RDB: rdb, Channel: tasks.ChannelVideoJobs}
}

func (p *RedisPublisher) Publish(ctx context.Context, event tasks.JobEvent) error {
	payload, err := tasks.Marshal(event)
	if err != nil {
		return err
	}
	return p.RDB.Publish(ctx, p.Channel, payload).Err()
}

// NopPublisher drops events. Used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, tasks.JobEvent) error { return nil }
