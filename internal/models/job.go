package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// JobRecord is a persisted background job, used when the job store is
// backed by SurrealDB instead of process memory.
type JobRecord struct {
	ID        surrealmodels.RecordID `json:"id"`
	JobType   string                 `json:"job_type"`
	State     string                 `json:"state"`
	Result    map[string]any         `json:"result,omitempty"`
	Error     *string                `json:"error,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}
