package db

import (
	"context"
	"fmt"

	"github.com/knwl-ai/knwld/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// CreateJob persists a new pending job record under the given id.
func (c *Client) CreateJob(ctx context.Context, id, jobType string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE type::record("job", $id) CONTENT {
			job_type: $job_type,
			state: 'pending'
		}
	`, map[string]any{"id": id, "job_type": jobType})
	if err != nil {
		return fmt.Errorf("create job: %w", wrapQueryError(err))
	}
	return nil
}

// GetJob retrieves a persisted job record. Returns nil if not found.
func (c *Client) GetJob(ctx context.Context, id string) (*models.JobRecord, error) {
	results, err := surrealdb.Query[[]models.JobRecord](ctx, c.db, `
		SELECT * FROM type::record("job", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get job: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// UpdateJobState transitions a persisted job to a new state.
func (c *Client) UpdateJobState(ctx context.Context, id, state string) error {
	return c.updateJob(ctx, id, map[string]any{"state": state})
}

// CompleteJob marks a persisted job completed with its result.
func (c *Client) CompleteJob(ctx context.Context, id string, result map[string]any) error {
	return c.updateJob(ctx, id, map[string]any{
		"state":  "completed",
		"result": result,
	})
}

// FailJob marks a persisted job failed with an error message.
func (c *Client) FailJob(ctx context.Context, id, errMsg string) error {
	return c.updateJob(ctx, id, map[string]any{
		"state": "failed",
		"error": errMsg,
	})
}

func (c *Client) updateJob(ctx context.Context, id string, fields map[string]any) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("job", $id) MERGE $fields;
		UPDATE type::record("job", $id) SET updated_at = time::now();
	`, map[string]any{"id": id, "fields": fields})
	if err != nil {
		return fmt.Errorf("update job: %w", wrapQueryError(err))
	}
	return nil
}
