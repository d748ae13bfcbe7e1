package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Edge is a stored relation between two nodes.
type Edge struct {
	ID        surrealmodels.RecordID `json:"id"`
	In        surrealmodels.RecordID `json:"in"`
	Out       surrealmodels.RecordID `json:"out"`
	RelType   string                 `json:"rel_type"`
	Weight    float64                `json:"weight"`
	CreatedAt time.Time              `json:"created_at"`
}

// EdgeInput carries the fields for relating two nodes.
type EdgeInput struct {
	From    string
	To      string
	RelType string
	Weight  float64
}
