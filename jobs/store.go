package jobs

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/drewmudry/slideshorts/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned for ids the store has never issued.
var ErrNotFound = errors.New("job not found")

// ErrTerminal is returned when a finished job is asked to change.
var ErrTerminal = errors.New("job already finished")

const (
	progressStarted  = 0.1
	progressFinished = 1.0
)

// Store is the process-wide, in-memory job table. Contents are lost on
// restart; only rendered files outlive the process.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]models.Job
	// newID is swapped in tests.
	newID func() string
}

func NewStore() *Store {
	return &Store{
		jobs:  make(map[string]models.Job),
		newID: newJobID,
	}
}

func newJobID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Create issues a fresh id and records the job as running.
func (s *Store) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for {
		if _, taken := s.jobs[id]; !taken {
			break
		}
		id = s.newID()
	}
	s.jobs[id] = models.Job{ID: id, Status: models.JobStatusRunning, Progress: progressStarted}
	return id
}

// MarkRunning resets progress on a running job.
func (s *Store) MarkRunning(id string) error {
	return s.update(id, func(j *models.Job) {
		j.Status = models.JobStatusRunning
		j.Progress = progressStarted
	})
}

// MarkProgress records pipeline progress, clamped to [0, 1).
func (s *Store) MarkProgress(id string, progress float64) error {
	return s.update(id, func(j *models.Job) {
		j.Progress = max(0, min(progress, 0.99))
	})
}

func (s *Store) MarkDone(id, url string) error {
	return s.update(id, func(j *models.Job) {
		j.Status = models.JobStatusDone
		j.Progress = progressFinished
		j.URL = url
	})
}

func (s *Store) MarkFailed(id, message string) error {
	return s.update(id, func(j *models.Job) {
		j.Status = models.JobStatusFailed
		j.Progress = progressFinished
		j.Message = message
	})
}

// Get returns a snapshot of the job.
func (s *Store) Get(id string) (models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	return j, ok
}

// Len reports how many jobs the process has seen.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

func (s *Store) update(id string, apply func(*models.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if j.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrTerminal, id, j.Status)
	}
	apply(&j)
	s.jobs[id] = j
	return nil
}
