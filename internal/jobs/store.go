package jobs

import (
	"context"
	"sync"
)

// Store is the shared job registry. Workers write partial updates, status
// queries read snapshots. Each Upsert is atomic on its own; callers must not
// assume atomicity across calls.
type Store interface {
	// Upsert merges u into the job's current fields, creating the job if
	// it does not exist yet.
	Upsert(ctx context.Context, id string, u Update) error
	// Get returns a snapshot of the job, or false if unknown.
	Get(ctx context.Context, id string) (Job, bool, error)
}

// MemoryStore keeps jobs in a mutex-guarded map for the lifetime of the
// process. Updates are small field merges, so one coarse lock is enough.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Job)}
}

func (s *MemoryStore) Upsert(_ context.Context, id string, u Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		job = &Job{ID: id}
		s.jobs[id] = job
	}
	job.apply(u)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Job, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false, nil
	}
	return job.snapshot(), true, nil
}
