package worker

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/drewmudry/slideshorts/tasks"
	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/go-hclog"
)

// TaskHandler processes one task payload.
type TaskHandler func(ctx context.Context, payload string) error

// queueClient is the subset of *redis.Client the queue uses.
type queueClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Queue moves tasks through Redis lists: LPUSH to enqueue, BRPOP to consume.
// Each task is delivered to exactly one listening worker.
type Queue struct {
	client      queueClient
	handlers    map[string]TaskHandler
	logger      hclog.Logger
	pollTimeout time.Duration
	retryDelay  time.Duration
}

func NewQueue(client queueClient, logger hclog.Logger) *Queue {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Queue{
		client:      client,
		handlers:    make(map[string]TaskHandler),
		logger:      logger,
		pollTimeout: 5 * time.Second,
		retryDelay:  time.Second,
	}
}

// Register maps a queue name to a handler function.
func (q *Queue) Register(queueName string, handler TaskHandler) {
	q.handlers[queueName] = handler
	q.logger.Info("registered handler", "queue", queueName)
}

// Enqueue adds a new task to a queue.
func (q *Queue) Enqueue(ctx context.Context, queueName string, payload interface{}) error {
	payloadStr, err := tasks.Marshal(payload)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, queueName, payloadStr).Err()
}

// Listen consumes all registered queues until ctx is done. Handler errors
// are logged and the task is dropped; nothing is retried.
func (q *Queue) Listen(ctx context.Context) error {
	names := make([]string, 0, len(q.handlers))
	for name := range q.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	q.logger.Info("worker listening", "queues", names)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := q.client.BRPop(ctx, q.pollTimeout, names...).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			q.logger.Error("error popping from queue", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(q.retryDelay):
			}
			continue
		}

		// result[0] is the queue name, result[1] is the payload
		queueName, payload := result[0], result[1]
		handler, ok := q.handlers[queueName]
		if !ok {
			q.logger.Error("no handler registered", "queue", queueName)
			continue
		}

		q.logger.Debug("received task", "queue", queueName)
		if err := handler(ctx, payload); err != nil {
			q.logger.Error("error processing task", "queue", queueName, "error", err)
		}
	}
}
