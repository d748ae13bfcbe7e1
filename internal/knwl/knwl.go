// Package knwl defines the knowledge-graph capability surface and its
// in-repo implementation. The service layer depends only on the Graph
// interface; everything behind it is replaceable.
package knwl

import (
	"context"
	"fmt"
	"time"
)

// Retrieval strategies accepted by Ask and Augment.
const (
	StrategyHybrid   = "hybrid"
	StrategyFulltext = "fulltext"
	StrategyVector   = "vector"

	// DefaultStrategy is used when the caller passes an empty strategy.
	DefaultStrategy = StrategyHybrid
)

// DefaultFactType is applied when a fact is submitted without a type.
const DefaultFactType = "Fact"

// Input is free-form text for ingestion, with optional metadata passed
// through verbatim.
type Input struct {
	Text        string `json:"text"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Fact is a single named statement to insert into the graph. ID is
// optional; when absent the backend generates one.
type Fact struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

// Node is a graph node as seen by callers.
type Node struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	DocumentID   string   `json:"document_id"`
	NodeIDs      []string `json:"node_ids"`
	EdgeCount    int      `json:"edge_count"`
	ChunkCount   int      `json:"chunk_count"`
	Name         string   `json:"name,omitempty"`
	Description  string   `json:"description,omitempty"`
	ElapsedMilli int64    `json:"elapsed_ms"`
}

// DeleteResult reports the outcome of a node deletion.
type DeleteResult struct {
	ID           string `json:"id"`
	Deleted      bool   `json:"deleted"`
	EdgesRemoved int    `json:"edges_removed"`
}

// Answer is a synthesized response to a question, with the nodes that
// grounded it.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Strategy string `json:"strategy"`
	Sources  []Node `json:"sources"`
}

// Context is retrieved graph context for augmenting external prompts.
type Context struct {
	Text      string `json:"text"`
	Strategy  string `json:"strategy"`
	Fragments []Node `json:"fragments"`
}

// Graph is the knowledge-graph engine's capability set. All operations
// may block on I/O and honor ctx cancellation; Namespace is in-memory.
type Graph interface {
	Ingest(ctx context.Context, input Input) (*IngestResult, error)
	AddFact(ctx context.Context, fact Fact) (*Node, error)
	NodeCount(ctx context.Context) (int, error)
	EdgeCount(ctx context.Context) (int, error)
	Namespace() string
	// GetNodeByID returns nil, nil when the node does not exist.
	GetNodeByID(ctx context.Context, id string) (*Node, error)
	DeleteNodeByID(ctx context.Context, id string) (*DeleteResult, error)
	Ask(ctx context.Context, question, strategy string) (*Answer, error)
	Augment(ctx context.Context, text, strategy string) (*Context, error)
}

// ValidStrategy reports whether s names a known retrieval strategy.
func ValidStrategy(s string) bool {
	switch s {
	case StrategyHybrid, StrategyFulltext, StrategyVector:
		return true
	}
	return false
}

// NormalizeStrategy applies the default and rejects unknown strategies.
func NormalizeStrategy(s string) (string, error) {
	if s == "" {
		return DefaultStrategy, nil
	}
	if !ValidStrategy(s) {
		return "", fmt.Errorf("unknown strategy %q", s)
	}
	return s, nil
}
