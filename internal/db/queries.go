package db

import (
	"context"
	"fmt"

	"github.com/knwl-ai/knwld/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

type countRow struct {
	Count int `json:"count"`
}

// CreateNode inserts a node. When in.ID is set the record is created
// under that id; otherwise SurrealDB generates one.
func (c *Client) CreateNode(ctx context.Context, in models.NodeInput) (*models.Node, error) {
	content := map[string]any{
		"name":    in.Name,
		"content": in.Content,
		"type":    in.Type,
	}
	if in.Source != "" {
		content["source"] = in.Source
	}
	if len(in.Embedding) > 0 {
		content["embedding"] = in.Embedding
	}

	sql := `CREATE node CONTENT $content`
	vars := map[string]any{"content": content}
	if in.ID != "" {
		sql = `CREATE type::record("node", $id) CONTENT $content`
		vars["id"] = in.ID
	}

	results, err := surrealdb.Query[[]models.Node](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("create node: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create node: empty result")
	}
	return &(*results)[0].Result[0], nil
}

// GetNode retrieves a node by id. Returns nil if not found.
func (c *Client) GetNode(ctx context.Context, id string) (*models.Node, error) {
	results, err := surrealdb.Query[[]models.Node](ctx, c.db, `
		SELECT * FROM type::record("node", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get node: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// DeleteNode removes a node and all edges attached to it. Reports
// whether the node existed and how many edges were removed.
func (c *Client) DeleteNode(ctx context.Context, id string) (bool, int, error) {
	existing, err := c.GetNode(ctx, id)
	if err != nil {
		return false, 0, err
	}
	if existing == nil {
		return false, 0, nil
	}

	counts, err := surrealdb.Query[[]countRow](ctx, c.db, `
		SELECT count() FROM edge
		WHERE in = type::record("node", $id) OR out = type::record("node", $id)
		GROUP ALL
	`, map[string]any{"id": id})
	if err != nil {
		return false, 0, fmt.Errorf("count edges: %w", wrapQueryError(err))
	}
	edges := 0
	if counts != nil && len(*counts) > 0 && len((*counts)[0].Result) > 0 {
		edges = (*counts)[0].Result[0].Count
	}

	_, err = surrealdb.Query[any](ctx, c.db, `
		DELETE edge WHERE in = type::record("node", $id) OR out = type::record("node", $id);
		DELETE type::record("node", $id);
	`, map[string]any{"id": id})
	if err != nil {
		return false, 0, fmt.Errorf("delete node: %w", wrapQueryError(err))
	}
	return true, edges, nil
}

// NodeCount returns the total number of nodes.
func (c *Client) NodeCount(ctx context.Context) (int, error) {
	return c.count(ctx, "SELECT count() FROM node GROUP ALL")
}

// EdgeCount returns the total number of edges.
func (c *Client) EdgeCount(ctx context.Context) (int, error) {
	return c.count(ctx, "SELECT count() FROM edge GROUP ALL")
}

func (c *Client) count(ctx context.Context, sql string) (int, error) {
	results, err := surrealdb.Query[[]countRow](ctx, c.db, sql, nil)
	if err != nil {
		return 0, fmt.Errorf("count: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Count, nil
}

// RelateNodes creates an edge between two nodes. Duplicate edges
// (same in/rel_type/out) are ignored.
func (c *Client) RelateNodes(ctx context.Context, in models.EdgeInput) error {
	weight := in.Weight
	if weight == 0 {
		weight = 1.0
	}
	_, err := surrealdb.Query[any](ctx, c.db, `
		RELATE type::record("node", $from)->edge->type::record("node", $to)
		SET rel_type = $rel_type, weight = $weight
	`, map[string]any{
		"from":     in.From,
		"to":       in.To,
		"rel_type": in.RelType,
		"weight":   weight,
	})
	if err != nil {
		wrapped := wrapQueryError(err)
		if isAlreadyExists(wrapped) {
			return nil
		}
		return fmt.Errorf("relate nodes: %w", wrapped)
	}
	return nil
}

// SearchFulltext runs a BM25 full-text search over node content.
func (c *Client) SearchFulltext(ctx context.Context, query string, limit int) ([]models.Node, error) {
	results, err := surrealdb.Query[[]models.Node](ctx, c.db, `
		SELECT id, name, content, type, source, created_at, updated_at
		FROM node WHERE content @0@ $q LIMIT $limit
	`, map[string]any{"q": query, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("fulltext search: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return []models.Node{}, nil
	}
	return (*results)[0].Result, nil
}

// SearchVector runs an approximate nearest-neighbor search over node
// embeddings via the HNSW index.
func (c *Client) SearchVector(ctx context.Context, embedding []float32, limit int) ([]models.Node, error) {
	sql := fmt.Sprintf(`
		SELECT id, name, content, type, source, created_at, updated_at
		FROM node WHERE embedding <|%d,40|> $emb
	`, limit)
	results, err := surrealdb.Query[[]models.Node](ctx, c.db, sql, map[string]any{"emb": embedding})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return []models.Node{}, nil
	}
	return (*results)[0].Result, nil
}

// SearchHybrid fuses full-text and vector results with reciprocal rank
// fusion. RRF k=60, the standard rank-fusion constant.
func (c *Client) SearchHybrid(ctx context.Context, query string, embedding []float32, limit int) ([]models.Node, error) {
	sql := fmt.Sprintf(`
		SELECT * FROM search::rrf([
			(SELECT id, name, content, type, source, created_at, updated_at
			 FROM node WHERE embedding <|%d,40|> $emb),
			(SELECT id, name, content, type, source, created_at, updated_at
			 FROM node WHERE content @0@ $q)
		], $limit, 60)
	`, limit*2)
	results, err := surrealdb.Query[[]models.Node](ctx, c.db, sql, map[string]any{
		"q":     query,
		"emb":   embedding,
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return []models.Node{}, nil
	}
	return (*results)[0].Result, nil
}
