package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/knwl-ai/knwld/internal/jobs"
	"github.com/knwl-ai/knwld/internal/service"
)

// IngestInput defines the input schema for the ingest tool.
type IngestInput struct {
	Text        string `json:"text" jsonschema:"required,The text content to ingest"`
	Name        string `json:"name,omitempty" jsonschema:"Optional name for the ingestion"`
	Description string `json:"description,omitempty" jsonschema:"Optional description for the ingestion"`
}

// AddFactInput defines the input schema for the add_fact tool.
type AddFactInput struct {
	Name     string `json:"name" jsonschema:"required,The name of the fact"`
	Content  string `json:"content" jsonschema:"required,The content of the fact"`
	FactType string `json:"fact_type,omitempty" jsonschema:"The type of the fact, defaults to Fact"`
	FactID   string `json:"fact_id,omitempty" jsonschema:"Optional unique identifier for the fact"`
}

// JobStatusInput identifies a job by id.
type JobStatusInput struct {
	JobID string `json:"job_id" jsonschema:"required,The unique identifier of the job"`
}

// jobAccepted is the response for accepted background jobs.
type jobAccepted struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// NewIngestHandler creates the ingest tool handler. Ingestion runs in
// the background; the result carries the job id to poll with
// get_job_status.
func NewIngestHandler(deps *Dependencies) mcp.ToolHandlerFor[IngestInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IngestInput) (*mcp.CallToolResult, any, error) {
		jobID, err := deps.Service.AddJob(ctx, jobs.TypeIngest, service.JobRequest{
			Text:        input.Text,
			Name:        input.Name,
			Description: input.Description,
		})
		if err != nil {
			if service.IsValidation(err) {
				return ErrorResult(err.Error(), "Provide the text to ingest"), nil, nil
			}
			deps.Logger.Error("ingest submission failed", "error", err)
			return ErrorResult("Failed to start ingestion job", ""), nil, nil
		}
		return JSONResult(jobAccepted{JobID: jobID, Message: "Ingestion job started successfully"}), nil, nil
	}
}

// NewAddFactHandler creates the add_fact tool handler.
func NewAddFactHandler(deps *Dependencies) mcp.ToolHandlerFor[AddFactInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AddFactInput) (*mcp.CallToolResult, any, error) {
		jobID, err := deps.Service.AddJob(ctx, jobs.TypeFact, service.JobRequest{
			Name:    input.Name,
			Content: input.Content,
			Type:    input.FactType,
			ID:      input.FactID,
		})
		if err != nil {
			if service.IsValidation(err) {
				return ErrorResult(err.Error(), "Provide name and content for the fact"), nil, nil
			}
			deps.Logger.Error("fact submission failed", "error", err)
			return ErrorResult("Failed to start fact job", ""), nil, nil
		}
		return JSONResult(jobAccepted{JobID: jobID, Message: "Fact job started successfully"}), nil, nil
	}
}

// NewJobStatusHandler creates the get_job_status tool handler.
func NewJobStatusHandler(deps *Dependencies) mcp.ToolHandlerFor[JobStatusInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input JobStatusInput) (*mcp.CallToolResult, any, error) {
		if input.JobID == "" {
			return ErrorResult("job_id cannot be empty", "Provide the job id"), nil, nil
		}

		status, err := deps.Service.GetJobStatus(ctx, input.JobID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return ErrorResult(fmt.Sprintf("Job %s not found", input.JobID), "Check the job id"), nil, nil
			}
			deps.Logger.Error("job status failed", "job_id", input.JobID, "error", err)
			return ErrorResult("Failed to retrieve job status", ""), nil, nil
		}
		return JSONResult(status), nil, nil
	}
}
