package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/drewmudry/slideshorts/tasks"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type popResult struct {
	vals []string
	err  error
}

type fakeQueueClient struct {
	pushed map[string][]string
	pops   []popResult
	cancel context.CancelFunc
}

func (f *fakeQueueClient) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	if f.pushed == nil {
		f.pushed = make(map[string][]string)
	}
	for _, v := range values {
		f.pushed[key] = append(f.pushed[key], v.(string))
	}
	return redis.NewIntResult(int64(len(f.pushed[key])), nil)
}

func (f *fakeQueueClient) BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	if len(f.pops) == 0 {
		f.cancel()
		return redis.NewStringSliceResult(nil, context.Canceled)
	}
	next := f.pops[0]
	f.pops = f.pops[1:]
	return redis.NewStringSliceResult(next.vals, next.err)
}

func TestQueueEnqueueMarshalsPayload(t *testing.T) {
	client := &fakeQueueClient{}
	q := NewQueue(client, nil)

	require.NoError(t, q.Enqueue(context.Background(), tasks.QueueVideoRender, tasks.RenderTaskPayload{Script: "hi", Duration: 5}))
	assert.Equal(t, []string{`{"script":"hi","duration":5}`}, client.pushed[tasks.QueueVideoRender])
}

func TestQueueListenDispatchesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &fakeQueueClient{
		cancel: cancel,
		pops: []popResult{
			{err: redis.Nil},
			{vals: []string{tasks.QueueVideoRender, "first"}},
			{err: errors.New("connection reset")},
			{vals: []string{"q_unknown", "ignored"}},
			{vals: []string{tasks.QueueVideoRender, "second"}},
		},
	}
	q := NewQueue(client, nil)
	q.retryDelay = time.Millisecond

	var got []string
	q.Register(tasks.QueueVideoRender, func(ctx context.Context, payload string) error {
		got = append(got, payload)
		if payload == "first" {
			return errors.New("handler errors are logged, not fatal")
		}
		return nil
	})

	err := q.Listen(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"first", "second"}, got)
}
