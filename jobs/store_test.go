package jobs

import (
	"fmt"
	"sync"
	"testing"

	"github.com/drewmudry/slideshorts/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLifecycleDone(t *testing.T) {
	s := NewStore()
	id := s.Create()
	require.Len(t, id, 32)

	j, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, models.JobStatusRunning, j.Status)
	assert.Equal(t, 0.1, j.Progress)

	require.NoError(t, s.MarkRunning(id))
	require.NoError(t, s.MarkProgress(id, 0.5))
	j, _ = s.Get(id)
	assert.Equal(t, 0.5, j.Progress)

	require.NoError(t, s.MarkDone(id, "/files/"+id+".mp4"))
	j, _ = s.Get(id)
	assert.Equal(t, models.JobStatusDone, j.Status)
	assert.Equal(t, 1.0, j.Progress)
	assert.Equal(t, "/files/"+id+".mp4", j.URL)
	assert.Empty(t, j.Message)
}

func TestStoreTerminalStatesAreImmutable(t *testing.T) {
	s := NewStore()
	id := s.Create()
	require.NoError(t, s.MarkFailed(id, "encoder exploded"))

	assert.ErrorIs(t, s.MarkDone(id, "/files/x.mp4"), ErrTerminal)
	assert.ErrorIs(t, s.MarkRunning(id), ErrTerminal)
	assert.ErrorIs(t, s.MarkProgress(id, 0.3), ErrTerminal)
	assert.ErrorIs(t, s.MarkFailed(id, "again"), ErrTerminal)

	j, _ := s.Get(id)
	assert.Equal(t, models.JobStatusFailed, j.Status)
	assert.Equal(t, "encoder exploded", j.Message)
	assert.Empty(t, j.URL)
}

func TestStoreUnknownID(t *testing.T) {
	s := NewStore()
	_, ok := s.Get("missing")
	assert.False(t, ok)
	assert.ErrorIs(t, s.MarkDone("missing", "u"), ErrNotFound)
	assert.ErrorIs(t, s.MarkFailed("missing", "m"), ErrNotFound)
}

func TestStoreProgressIsClamped(t *testing.T) {
	s := NewStore()
	id := s.Create()
	require.NoError(t, s.MarkProgress(id, 7))
	j, _ := s.Get(id)
	assert.Less(t, j.Progress, 1.0)
	require.NoError(t, s.MarkProgress(id, -1))
	j, _ = s.Get(id)
	assert.Equal(t, 0.0, j.Progress)
}

func TestStoreCreateSkipsCollidingIDs(t *testing.T) {
	s := NewStore()
	ids := []string{"a", "a", "b"}
	s.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	assert.Equal(t, "a", s.Create())
	assert.Equal(t, "b", s.Create())
}

func TestStoreConcurrentJobs(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := s.Create()
			if i%2 == 0 {
				assert.NoError(t, s.MarkDone(id, fmt.Sprintf("/files/%s.mp4", id)))
			} else {
				assert.NoError(t, s.MarkFailed(id, "boom"))
			}
			_, ok := s.Get(id)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}
