// Package service provides the single logical API consumed identically
// by the HTTP and MCP front ends. Mutations become background jobs with
// a pollable status record; queries delegate synchronously to the graph.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/knwl-ai/knwld/internal/jobs"
	"github.com/knwl-ai/knwld/internal/knwl"
)

// JobRequest carries the union of fields accepted by job submissions.
// The service validates the subset required by each job type.
type JobRequest struct {
	// Ingest fields
	Text        string `json:"text,omitempty"`
	Description string `json:"description,omitempty"`

	// Fact fields (Name is shared: ingest metadata / fact name)
	Name    string `json:"name,omitempty"`
	Content string `json:"content,omitempty"`
	Type    string `json:"type,omitempty"`
	ID      string `json:"id,omitempty"`
}

// Service is the shared service layer.
type Service struct {
	graph  knwl.Graph
	store  jobs.Store
	runner *jobs.Runner
	logger *slog.Logger
}

// New creates a service over the given graph backend and job store.
func New(graph knwl.Graph, store jobs.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		graph:  graph,
		store:  store,
		runner: jobs.NewRunner(store, logger),
		logger: logger,
	}
}

// AddJob validates the request, creates a pending job record and
// schedules the backend operation. It returns the job id without
// waiting for completion. Validation failures occur before any record
// is created, so rejected requests never leave orphaned jobs.
func (s *Service) AddJob(ctx context.Context, jobType string, req JobRequest) (string, error) {
	task, err := s.buildTask(jobType, req)
	if err != nil {
		return "", err
	}

	status, err := s.store.Create(ctx, jobType)
	if err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}

	s.runner.Dispatch(status.JobID, task)
	s.logger.Info("job accepted", "job_id", status.JobID, "job_type", jobType)
	return status.JobID, nil
}

// buildTask validates req for jobType and returns the task to run.
func (s *Service) buildTask(jobType string, req JobRequest) (jobs.Task, error) {
	switch jobType {
	case jobs.TypeIngest:
		if req.Text == "" {
			return nil, missingField("text")
		}
		input := knwl.Input{
			Text:        req.Text,
			Name:        req.Name,
			Description: req.Description,
		}
		return func(ctx context.Context) (any, error) {
			return s.graph.Ingest(ctx, input)
		}, nil

	case jobs.TypeFact:
		if req.Name == "" {
			return nil, missingField("name")
		}
		if req.Content == "" {
			return nil, missingField("content")
		}
		fact := knwl.Fact{
			ID:      req.ID,
			Name:    req.Name,
			Content: req.Content,
			Type:    req.Type,
		}
		if fact.Type == "" {
			fact.Type = knwl.DefaultFactType
		}
		return func(ctx context.Context) (any, error) {
			return s.graph.AddFact(ctx, fact)
		}, nil

	default:
		return nil, &ValidationError{Field: "job_type", Msg: fmt.Sprintf("unrecognized job type %q", jobType)}
	}
}

// GetJobStatus returns the status snapshot for id, or ErrNotFound.
func (s *Service) GetJobStatus(ctx context.Context, id string) (*jobs.Status, error) {
	status, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if status == nil {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return status, nil
}

// NodeCount returns the number of nodes in the graph.
func (s *Service) NodeCount(ctx context.Context) (int, error) {
	return s.graph.NodeCount(ctx)
}

// EdgeCount returns the number of edges in the graph.
func (s *Service) EdgeCount(ctx context.Context) (int, error) {
	return s.graph.EdgeCount(ctx)
}

// Namespace returns the graph's namespace.
func (s *Service) Namespace() string {
	return s.graph.Namespace()
}

// GetNodeByID returns the node, or ErrNotFound.
func (s *Service) GetNodeByID(ctx context.Context, id string) (*knwl.Node, error) {
	if id == "" {
		return nil, missingField("id")
	}
	node, err := s.graph.GetNodeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	return node, nil
}

// DeleteNodeByID deletes the node. Idempotency is whatever the backend
// provides; this layer adds no guarantee of its own.
func (s *Service) DeleteNodeByID(ctx context.Context, id string) (*knwl.DeleteResult, error) {
	if id == "" {
		return nil, missingField("id")
	}
	return s.graph.DeleteNodeByID(ctx, id)
}

// AskQuestion answers a question against the graph. An empty strategy
// selects the backend's default.
func (s *Service) AskQuestion(ctx context.Context, question, strategy string) (*knwl.Answer, error) {
	if question == "" {
		return nil, missingField("question")
	}
	resolved, err := knwl.NormalizeStrategy(strategy)
	if err != nil {
		return nil, &ValidationError{Field: "strategy", Msg: err.Error()}
	}
	return s.graph.Ask(ctx, question, resolved)
}

// Augment retrieves graph context for the given text. An empty strategy
// selects the backend's default.
func (s *Service) Augment(ctx context.Context, text, strategy string) (*knwl.Context, error) {
	if text == "" {
		return nil, missingField("text")
	}
	resolved, err := knwl.NormalizeStrategy(strategy)
	if err != nil {
		return nil, &ValidationError{Field: "strategy", Msg: err.Error()}
	}
	return s.graph.Augment(ctx, text, resolved)
}

// Drain blocks until all in-flight jobs reach a terminal state. Used by
// graceful shutdown and tests.
func (s *Service) Drain() {
	s.runner.Wait()
}
