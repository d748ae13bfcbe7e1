// Package models defines data structures stored in SurrealDB.
package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Node is a stored knowledge-graph node.
type Node struct {
	ID        surrealmodels.RecordID `json:"id"`
	Name      string                 `json:"name"`
	Content   string                 `json:"content"`
	Type      string                 `json:"type"`
	Source    *string                `json:"source,omitempty"`
	Embedding []float32              `json:"embedding,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// NodeInput carries the fields for creating a node. ID is optional;
// when empty the database generates one.
type NodeInput struct {
	ID        string
	Name      string
	Content   string
	Type      string
	Source    string
	Embedding []float32
}
