package tools_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knwl-ai/knwld/internal/jobs"
	"github.com/knwl-ai/knwld/internal/knwl"
	"github.com/knwl-ai/knwld/internal/service"
	"github.com/knwl-ai/knwld/internal/tools"
)

// testLogger creates a logger for test visibility.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// stubGraph is a canned-response Graph backend.
type stubGraph struct {
	nodes map[string]knwl.Node
}

func (g *stubGraph) Ingest(context.Context, knwl.Input) (*knwl.IngestResult, error) {
	return &knwl.IngestResult{DocumentID: "node:d1", NodeIDs: []string{"node:d1"}, ChunkCount: 1}, nil
}

func (g *stubGraph) AddFact(_ context.Context, fact knwl.Fact) (*knwl.Node, error) {
	return &knwl.Node{ID: fact.ID, Name: fact.Name, Content: fact.Content, Type: fact.Type}, nil
}

func (g *stubGraph) NodeCount(context.Context) (int, error) { return len(g.nodes), nil }
func (g *stubGraph) EdgeCount(context.Context) (int, error) { return 0, nil }
func (g *stubGraph) Namespace() string                      { return "default" }

func (g *stubGraph) GetNodeByID(_ context.Context, id string) (*knwl.Node, error) {
	node, ok := g.nodes[id]
	if !ok {
		return nil, nil
	}
	return &node, nil
}

func (g *stubGraph) DeleteNodeByID(_ context.Context, id string) (*knwl.DeleteResult, error) {
	_, ok := g.nodes[id]
	delete(g.nodes, id)
	return &knwl.DeleteResult{ID: id, Deleted: ok}, nil
}

func (g *stubGraph) Ask(_ context.Context, question, strategy string) (*knwl.Answer, error) {
	return &knwl.Answer{Question: question, Answer: "42", Strategy: strategy}, nil
}

func (g *stubGraph) Augment(_ context.Context, text, strategy string) (*knwl.Context, error) {
	return &knwl.Context{Text: "ctx", Strategy: strategy}, nil
}

// startSession spins up an MCP server over in-memory transports and
// returns a connected client session.
func startSession(t *testing.T, svc *service.Service) *mcp.ClientSession {
	t.Helper()

	server := mcp.NewServer(&mcp.Implementation{Name: "test-knwl", Version: "0.0.1-test"}, nil)
	tools.RegisterAll(server, &tools.Dependencies{Service: svc, Logger: testLogger()}, "0.0.1-test")

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	go func() { _ = server.Run(ctx, serverTransport) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err, "client should connect successfully")
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	return result
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content should be TextContent")
	return text.Text
}

func TestToolRegistration(t *testing.T) {
	svc := service.New(&stubGraph{}, jobs.NewMemoryStore(), nil)
	session := startSession(t, svc)

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, result.Tools, 10)

	names := make(map[string]bool, len(result.Tools))
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"node_count", "edge_count", "namespace", "get_node", "delete_node",
		"ingest", "add_fact", "get_job_status", "ask_question", "augment_text",
	} {
		assert.True(t, names[want], "tool %s should be registered", want)
	}
}

func TestCountAndNamespaceTools(t *testing.T) {
	graph := &stubGraph{nodes: map[string]knwl.Node{"n1": {ID: "n1"}, "n2": {ID: "n2"}}}
	svc := service.New(graph, jobs.NewMemoryStore(), nil)
	session := startSession(t, svc)

	result := callTool(t, session, "node_count", nil)
	assert.False(t, result.IsError)
	assert.Equal(t, "2", textOf(t, result))

	result = callTool(t, session, "edge_count", nil)
	assert.Equal(t, "0", textOf(t, result))

	result = callTool(t, session, "namespace", nil)
	assert.Equal(t, "default", textOf(t, result))
}

func TestGetNodeTool(t *testing.T) {
	graph := &stubGraph{nodes: map[string]knwl.Node{"n1": {ID: "n1", Name: "fox"}}}
	svc := service.New(graph, jobs.NewMemoryStore(), nil)
	session := startSession(t, svc)

	result := callTool(t, session, "get_node", map[string]any{"node_id": "n1"})
	require.False(t, result.IsError)
	var node knwl.Node
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &node))
	assert.Equal(t, "fox", node.Name)

	result = callTool(t, session, "get_node", map[string]any{"node_id": "missing"})
	assert.True(t, result.IsError)
}

func TestIngestAndJobStatusTools(t *testing.T) {
	svc := service.New(&stubGraph{}, jobs.NewMemoryStore(), nil)
	session := startSession(t, svc)

	result := callTool(t, session, "ingest", map[string]any{"text": "some document"})
	require.False(t, result.IsError)

	var accepted struct {
		JobID   string `json:"job_id"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &accepted))
	require.NotEmpty(t, accepted.JobID)

	svc.Drain()

	result = callTool(t, session, "get_job_status", map[string]any{"job_id": accepted.JobID})
	require.False(t, result.IsError)
	var status jobs.Status
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &status))
	assert.Equal(t, jobs.StateCompleted, status.State)
}

func TestIngestToolRejectsMissingText(t *testing.T) {
	svc := service.New(&stubGraph{}, jobs.NewMemoryStore(), nil)
	session := startSession(t, svc)

	// An empty value passes the input schema; the service layer rejects
	// it and the handler reports a tool error.
	result := callTool(t, session, "ingest", map[string]any{"text": ""})
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "text")

	// Omitting the required property entirely is caught by the SDK's
	// schema validation before the handler runs.
	_, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "ingest",
		Arguments: map[string]any{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text")
}

func TestAddFactTool(t *testing.T) {
	svc := service.New(&stubGraph{}, jobs.NewMemoryStore(), nil)
	session := startSession(t, svc)

	result := callTool(t, session, "add_fact", map[string]any{
		"name":    "capital",
		"content": "Paris is the capital of France",
	})
	require.False(t, result.IsError)

	// An empty content value reaches the service layer and comes back
	// as a tool error rather than a protocol failure.
	result = callTool(t, session, "add_fact", map[string]any{"name": "no content", "content": ""})
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "content")

	// Omitting required properties fails schema validation in the SDK.
	_, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "add_fact",
		Arguments: map[string]any{"name": "no content"},
	})
	require.Error(t, err)
}

func TestAskQuestionTool(t *testing.T) {
	svc := service.New(&stubGraph{}, jobs.NewMemoryStore(), nil)
	session := startSession(t, svc)

	result := callTool(t, session, "ask_question", map[string]any{"question": "what is the answer?"})
	require.False(t, result.IsError)
	var answer knwl.Answer
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &answer))
	assert.Equal(t, "42", answer.Answer)
	assert.Equal(t, knwl.StrategyHybrid, answer.Strategy)
}

func TestJobStatusToolUnknownJob(t *testing.T) {
	svc := service.New(&stubGraph{}, jobs.NewMemoryStore(), nil)
	session := startSession(t, svc)

	result := callTool(t, session, "get_job_status", map[string]any{"job_id": "nope"})
	assert.True(t, result.IsError)
}

func TestInfoResource(t *testing.T) {
	svc := service.New(&stubGraph{}, jobs.NewMemoryStore(), nil)
	session := startSession(t, svc)

	result, err := session.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: "text://info"})
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)

	var info struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &info))
	assert.Equal(t, "0.0.1-test", info.Version)
	assert.Contains(t, info.Name, "Knwl")
}
