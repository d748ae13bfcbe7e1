// Package jobs tracks background graph mutations as pollable job records.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a job.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Terminal reports whether no further transitions can occur.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Job types accepted by the service.
const (
	TypeIngest = "ingest"
	TypeFact   = "fact"
)

// Status is one accepted background request. Result is set only on
// completion, Error only on failure, never both.
type Status struct {
	JobID     string    `json:"job_id"`
	JobType   string    `json:"job_type"`
	State     State     `json:"state"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrUnknownJob indicates an update against a job id the store has never
// issued. Only the runner bound to a record updates it, so this is a
// programming error and surfaces loudly.
var ErrUnknownJob = errors.New("unknown job id")

// Store is the authoritative mapping from job id to Status.
// Implementations must be safe for concurrent use and must return
// snapshots from Get so pollers never observe a half-written record.
type Store interface {
	// Create allocates a fresh unique id and inserts a pending record.
	Create(ctx context.Context, jobType string) (Status, error)

	// Get returns a snapshot of the record, or nil when the id was
	// never issued. The copy is shallow: Status.Result may share
	// memory with the stored record, and callers must treat it as
	// read-only. The runner sets Result exactly once, on the
	// transition to the terminal state, so the shared value never
	// changes after a poller can observe it.
	Get(ctx context.Context, id string) (*Status, error)

	// Update applies mutate to the record and advances UpdatedAt.
	// Returns ErrUnknownJob when the id is absent.
	Update(ctx context.Context, id string, mutate func(*Status)) error
}

// MemoryStore is the in-memory Store used by single-process deployments
// and tests. Records are never evicted; they live for the process lifetime.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Status
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Status)}
}

// Create inserts a new pending record under a fresh uuid.
func (s *MemoryStore) Create(_ context.Context, jobType string) (Status, error) {
	now := time.Now()
	status := Status{
		JobID:     uuid.New().String(),
		JobType:   jobType,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[status.JobID]; exists {
		return Status{}, fmt.Errorf("job id collision: %s", status.JobID)
	}
	record := status
	s.jobs[status.JobID] = &record
	return status, nil
}

// Get returns a copy of the record so callers can never race the
// runner. The copy is shallow; see Store.Get for the Result contract.
func (s *MemoryStore) Get(_ context.Context, id string) (*Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	snapshot := *record
	return &snapshot, nil
}

// Update applies mutate under the store lock, so a concurrent Get sees
// either the old record or the new one, never a partial write.
func (s *MemoryStore) Update(_ context.Context, id string, mutate func(*Status)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, id)
	}
	mutate(record)
	record.UpdatedAt = time.Now()
	return nil
}

// Len returns the number of tracked jobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
