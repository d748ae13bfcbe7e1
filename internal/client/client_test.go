package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knwl-ai/knwld/internal/jobs"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestGetJobDecodesStatus(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/job/abc", r.URL.Path)
		json.NewEncoder(w).Encode(jobs.Status{
			JobID:     "abc",
			JobType:   jobs.TypeIngest,
			State:     jobs.StateCompleted,
			Result:    map[string]any{"chunk_count": float64(2)},
			CreatedAt: created,
			UpdatedAt: created.Add(time.Second),
		})
	}))

	status, err := c.GetJob(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", status.JobID)
	assert.Equal(t, jobs.StateCompleted, status.State)
	assert.True(t, status.State.Terminal())
	assert.NotNil(t, status.Result)
	assert.True(t, status.UpdatedAt.After(status.CreatedAt))
}

func TestIngestDecodesAcceptedJob(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/ingest", r.URL.Path)

		var req IngestRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "some text", req.Text)

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(JobAccepted{JobID: "j1", Message: "Ingestion job started successfully"})
	}))

	accepted, err := c.Ingest(context.Background(), IngestRequest{Text: "some text"})
	require.NoError(t, err)
	assert.Equal(t, "j1", accepted.JobID)
	assert.Equal(t, "Ingestion job started successfully", accepted.Message)
}

func TestServerErrorSurfaced(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(apiError{Error: "job nope: not found"})
	}))

	_, err := c.GetJob(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "not found")
}

func TestDefaultBaseURL(t *testing.T) {
	t.Setenv("KNWL_SERVER_URL", "")
	c := New("")
	assert.Equal(t, "http://localhost:9030", c.baseURL)

	t.Setenv("KNWL_SERVER_URL", "http://graph.internal:9030/")
	c = New("")
	assert.Equal(t, "http://graph.internal:9030", c.baseURL)

	// Explicit argument wins over the environment.
	c = New("http://other:1234")
	assert.Equal(t, "http://other:1234", c.baseURL)
}
