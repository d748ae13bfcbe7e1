package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/knwl-ai/knwld/internal/db"
	"github.com/knwl-ai/knwld/internal/models"
)

// SurrealStore is a Store backed by the job table in SurrealDB, for
// deployments that want job records to survive process restarts.
type SurrealStore struct {
	db *db.Client
}

var _ Store = (*SurrealStore)(nil)

// NewSurrealStore creates a durable job store over the given client.
func NewSurrealStore(client *db.Client) *SurrealStore {
	return &SurrealStore{db: client}
}

// Create persists a new pending record under a fresh uuid.
func (s *SurrealStore) Create(ctx context.Context, jobType string) (Status, error) {
	id := uuid.New().String()
	if err := s.db.CreateJob(ctx, id, jobType); err != nil {
		return Status{}, err
	}
	now := time.Now()
	return Status{
		JobID:     id,
		JobType:   jobType,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Get returns the persisted record, or nil when the id was never issued.
func (s *SurrealStore) Get(ctx context.Context, id string) (*Status, error) {
	record, err := s.db.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return recordToStatus(record)
}

// Update reads, mutates and writes back the record. Safe because only
// the runner bound to a job id ever updates it.
func (s *SurrealStore) Update(ctx context.Context, id string, mutate func(*Status)) error {
	status, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if status == nil {
		return fmt.Errorf("%w: %s", ErrUnknownJob, id)
	}

	mutate(status)

	switch status.State {
	case StateCompleted:
		result, err := resultToMap(status.Result)
		if err != nil {
			return err
		}
		return s.db.CompleteJob(ctx, id, result)
	case StateFailed:
		return s.db.FailJob(ctx, id, status.Error)
	default:
		return s.db.UpdateJobState(ctx, id, string(status.State))
	}
}

func recordToStatus(record *models.JobRecord) (*Status, error) {
	id, err := models.RecordIDString(record.ID)
	if err != nil {
		return nil, err
	}
	status := &Status{
		JobID:     id,
		JobType:   record.JobType,
		State:     State(record.State),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if record.Result != nil {
		status.Result = record.Result
	}
	if record.Error != nil {
		status.Error = *record.Error
	}
	return status, nil
}

// resultToMap converts a typed job result into the flexible object
// shape the job table stores.
func resultToMap(result any) (map[string]any, error) {
	if result == nil {
		return nil, nil
	}
	if m, ok := result.(map[string]any); ok {
		return m, nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode job result: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode job result: %w", err)
	}
	return m, nil
}
