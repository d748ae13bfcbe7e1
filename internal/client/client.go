// Package client provides a REST client for the knwld server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/knwl-ai/knwld/internal/jobs"
	"github.com/knwl-ai/knwld/internal/knwl"
	"github.com/knwl-ai/knwld/internal/metrics"
)

// Client talks to the knwld HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new client.
// If baseURL is empty, uses KNWL_SERVER_URL env var or defaults to localhost:9030.
// Timeout can be configured via KNWL_CLIENT_TIMEOUT env var (default 10m for batch operations).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("KNWL_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:9030"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := 10 * time.Minute
	if t := os.Getenv("KNWL_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// apiError is the server's error payload.
type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// do sends a request with an optional JSON body and decodes the JSON
// response into result.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server error: %s - %s", resp.Status, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// JobAccepted is returned when a background job has been submitted.
type JobAccepted struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// CountResult carries a node or edge count.
type CountResult struct {
	Namespace string `json:"namespace"`
	Count     int    `json:"count"`
}

// Health is the server health payload.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// IngestRequest is the payload for Ingest.
type IngestRequest struct {
	Text        string `json:"text"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// FactRequest is the payload for AddFact.
type FactRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
	ID      string `json:"id,omitempty"`
}

// Health checks server availability.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var health Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// NodeCount returns the number of nodes in the graph.
func (c *Client) NodeCount(ctx context.Context) (*CountResult, error) {
	var count CountResult
	if err := c.do(ctx, http.MethodGet, "/node_count", nil, &count); err != nil {
		return nil, err
	}
	return &count, nil
}

// EdgeCount returns the number of edges in the graph.
func (c *Client) EdgeCount(ctx context.Context) (*CountResult, error) {
	var count CountResult
	if err := c.do(ctx, http.MethodGet, "/edge_count", nil, &count); err != nil {
		return nil, err
	}
	return &count, nil
}

// Namespace returns the graph's namespace.
func (c *Client) Namespace(ctx context.Context) (string, error) {
	var resp struct {
		Namespace string `json:"namespace"`
	}
	if err := c.do(ctx, http.MethodGet, "/namespace", nil, &resp); err != nil {
		return "", err
	}
	return resp.Namespace, nil
}

// GetNode retrieves a node by id.
func (c *Client) GetNode(ctx context.Context, id string) (*knwl.Node, error) {
	var node knwl.Node
	if err := c.do(ctx, http.MethodGet, "/node/"+url.PathEscape(id), nil, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// DeleteNode deletes a node by id.
func (c *Client) DeleteNode(ctx context.Context, id string) (*knwl.DeleteResult, error) {
	var result knwl.DeleteResult
	if err := c.do(ctx, http.MethodDelete, "/node/"+url.PathEscape(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ingest submits an ingestion job and returns immediately with the job id.
func (c *Client) Ingest(ctx context.Context, req IngestRequest) (*JobAccepted, error) {
	var accepted JobAccepted
	if err := c.do(ctx, http.MethodPost, "/ingest", req, &accepted); err != nil {
		return nil, err
	}
	return &accepted, nil
}

// AddFact submits a fact job and returns immediately with the job id.
func (c *Client) AddFact(ctx context.Context, req FactRequest) (*JobAccepted, error) {
	var accepted JobAccepted
	if err := c.do(ctx, http.MethodPost, "/fact", req, &accepted); err != nil {
		return nil, err
	}
	return &accepted, nil
}

// GetJob retrieves a job status snapshot.
func (c *Client) GetJob(ctx context.Context, id string) (*jobs.Status, error) {
	var status jobs.Status
	if err := c.do(ctx, http.MethodGet, "/job/"+url.PathEscape(id), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Ask asks a question against the knowledge graph.
func (c *Client) Ask(ctx context.Context, question, strategy string) (*knwl.Answer, error) {
	req := map[string]string{"question": question}
	if strategy != "" {
		req["strategy"] = strategy
	}
	var answer knwl.Answer
	if err := c.do(ctx, http.MethodPost, "/ask", req, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

// Augment retrieves graph context for the given text.
func (c *Client) Augment(ctx context.Context, text, strategy string) (*knwl.Context, error) {
	req := map[string]string{"text": text}
	if strategy != "" {
		req["strategy"] = strategy
	}
	var result knwl.Context
	if err := c.do(ctx, http.MethodPost, "/augment", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ServerStats returns the server's runtime metrics snapshot.
func (c *Client) ServerStats(ctx context.Context) (*metrics.Snapshot, error) {
	var snapshot metrics.Snapshot
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// WatchJob subscribes to the job status stream and invokes onUpdate for
// every state change until the job reaches a terminal state. The final
// status is returned.
func (c *Client) WatchJob(ctx context.Context, id string, onUpdate func(jobs.Status)) (*jobs.Status, error) {
	wsURL := c.baseURL
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)
	wsURL += "/job/" + url.PathEscape(id) + "/stream"

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket connect: %w", err)
	}
	defer conn.Close()

	// Unblock the read loop when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var status jobs.Status
		if err := conn.ReadJSON(&status); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("read status frame: %w", err)
		}

		if onUpdate != nil {
			onUpdate(status)
		}
		if status.State.Terminal() {
			return &status, nil
		}
	}
}
