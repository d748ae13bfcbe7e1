//go:build integration

// Package db integration tests run against a real SurrealDB container.
package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/knwl-ai/knwld/internal/models"
)

var testDB *Client
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

// dummyEmbedding returns a 384-dimension vector matching the schema's
// HNSW index definition.
func dummyEmbedding() []float32 {
	embedding := make([]float32, 384)
	for i := range embedding {
		embedding[i] = float32(i) / 384.0
	}
	return embedding
}

// =============================================================================
// NODE TESTS
// =============================================================================

func TestCreateNode(t *testing.T) {
	ctx := context.Background()

	node, err := testDB.CreateNode(ctx, models.NodeInput{
		Name:      "Test Node",
		Content:   "Test node content",
		Type:      "Fact",
		Embedding: dummyEmbedding(),
	})
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}

	if node.Name != "Test Node" {
		t.Errorf("Expected name 'Test Node', got %q", node.Name)
	}
	if node.Type != "Fact" {
		t.Errorf("Expected type 'Fact', got %q", node.Type)
	}
	if node.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}

	_, _, _ = testDB.DeleteNode(ctx, models.MustRecordIDString(node.ID))
}

func TestCreateNodeWithExplicitID(t *testing.T) {
	ctx := context.Background()

	node, err := testDB.CreateNode(ctx, models.NodeInput{
		ID:      "explicit-id-test",
		Name:    "Explicit",
		Content: "created under a caller-chosen id",
		Type:    "Fact",
	})
	if err != nil {
		t.Fatalf("CreateNode with explicit id failed: %v", err)
	}
	defer func() {
		_, _, _ = testDB.DeleteNode(ctx, "explicit-id-test")
	}()

	if models.MustRecordIDString(node.ID) != "explicit-id-test" {
		t.Errorf("Expected id 'explicit-id-test', got %v", node.ID)
	}

	fetched, err := testDB.GetNode(ctx, "explicit-id-test")
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("GetNode returned nil for existing node")
	}
	if fetched.Name != "Explicit" {
		t.Errorf("Expected name 'Explicit', got %q", fetched.Name)
	}
}

func TestGetNodeNonExistent(t *testing.T) {
	ctx := context.Background()

	node, err := testDB.GetNode(ctx, "does-not-exist")
	if err != nil {
		t.Fatalf("GetNode with non-existent id should not error: %v", err)
	}
	if node != nil {
		t.Error("GetNode with non-existent id should return nil")
	}
}

func TestDeleteNode(t *testing.T) {
	ctx := context.Background()

	node, err := testDB.CreateNode(ctx, models.NodeInput{
		Name:    "Delete Me",
		Content: "deletion test",
		Type:    "Fact",
	})
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	id := models.MustRecordIDString(node.ID)

	deleted, edges, err := testDB.DeleteNode(ctx, id)
	if err != nil {
		t.Fatalf("DeleteNode failed: %v", err)
	}
	if !deleted {
		t.Error("DeleteNode should report true for an existing node")
	}
	if edges != 0 {
		t.Errorf("Expected 0 edges removed, got %d", edges)
	}

	fetched, err := testDB.GetNode(ctx, id)
	if err != nil {
		t.Fatalf("GetNode after delete failed: %v", err)
	}
	if fetched != nil {
		t.Error("Node should be gone after delete")
	}

	// Delete non-existent
	deleted, _, err = testDB.DeleteNode(ctx, id)
	if err != nil {
		t.Errorf("DeleteNode on missing node should not error: %v", err)
	}
	if deleted {
		t.Error("DeleteNode on missing node should report false")
	}
}

func TestDeleteNodeRemovesEdges(t *testing.T) {
	ctx := context.Background()

	a, err := testDB.CreateNode(ctx, models.NodeInput{ID: "edge-del-a", Name: "A", Content: "a", Type: "Fact"})
	if err != nil {
		t.Fatalf("CreateNode a failed: %v", err)
	}
	b, err := testDB.CreateNode(ctx, models.NodeInput{ID: "edge-del-b", Name: "B", Content: "b", Type: "Fact"})
	if err != nil {
		t.Fatalf("CreateNode b failed: %v", err)
	}
	defer func() {
		_, _, _ = testDB.DeleteNode(ctx, models.MustRecordIDString(b.ID))
	}()

	if err := testDB.RelateNodes(ctx, models.EdgeInput{From: "edge-del-a", To: "edge-del-b", RelType: "mentions"}); err != nil {
		t.Fatalf("RelateNodes failed: %v", err)
	}

	deleted, edges, err := testDB.DeleteNode(ctx, models.MustRecordIDString(a.ID))
	if err != nil {
		t.Fatalf("DeleteNode failed: %v", err)
	}
	if !deleted {
		t.Error("DeleteNode should report true")
	}
	if edges != 1 {
		t.Errorf("Expected 1 edge removed, got %d", edges)
	}
}

// =============================================================================
// COUNT TESTS
// =============================================================================

func TestCounts(t *testing.T) {
	ctx := context.Background()

	before, err := testDB.NodeCount(ctx)
	if err != nil {
		t.Fatalf("NodeCount failed: %v", err)
	}

	node, err := testDB.CreateNode(ctx, models.NodeInput{Name: "Counted", Content: "count test", Type: "Fact"})
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	defer func() {
		_, _, _ = testDB.DeleteNode(ctx, models.MustRecordIDString(node.ID))
	}()

	after, err := testDB.NodeCount(ctx)
	if err != nil {
		t.Fatalf("NodeCount failed: %v", err)
	}
	if after != before+1 {
		t.Errorf("Expected node count %d, got %d", before+1, after)
	}

	if _, err := testDB.EdgeCount(ctx); err != nil {
		t.Fatalf("EdgeCount failed: %v", err)
	}
}

// =============================================================================
// RELATION TESTS
// =============================================================================

func TestRelateNodesDuplicateIgnored(t *testing.T) {
	ctx := context.Background()

	_, err := testDB.CreateNode(ctx, models.NodeInput{ID: "rel-dup-a", Name: "A", Content: "a", Type: "Fact"})
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	_, err = testDB.CreateNode(ctx, models.NodeInput{ID: "rel-dup-b", Name: "B", Content: "b", Type: "Fact"})
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	defer func() {
		_, _, _ = testDB.DeleteNode(ctx, "rel-dup-a")
		_, _, _ = testDB.DeleteNode(ctx, "rel-dup-b")
	}()

	edge := models.EdgeInput{From: "rel-dup-a", To: "rel-dup-b", RelType: "related_to"}
	if err := testDB.RelateNodes(ctx, edge); err != nil {
		t.Fatalf("First RelateNodes failed: %v", err)
	}
	// Same in/rel_type/out hits the unique index and is swallowed.
	if err := testDB.RelateNodes(ctx, edge); err != nil {
		t.Fatalf("Duplicate RelateNodes should be ignored: %v", err)
	}

	// A different rel_type between the same nodes is a distinct edge.
	other := models.EdgeInput{From: "rel-dup-a", To: "rel-dup-b", RelType: "contains"}
	if err := testDB.RelateNodes(ctx, other); err != nil {
		t.Fatalf("RelateNodes with different rel_type failed: %v", err)
	}
}

// =============================================================================
// SEARCH TESTS
// =============================================================================

func TestSearchFulltext(t *testing.T) {
	ctx := context.Background()

	node, err := testDB.CreateNode(ctx, models.NodeInput{
		Name:    "Go Language",
		Content: "Go is a programming language designed at Google",
		Type:    "Fact",
	})
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	defer func() {
		_, _, _ = testDB.DeleteNode(ctx, models.MustRecordIDString(node.ID))
	}()

	results, err := testDB.SearchFulltext(ctx, "programming language", 10)
	if err != nil {
		t.Fatalf("SearchFulltext failed: %v", err)
	}
	if len(results) == 0 {
		t.Error("SearchFulltext should match the seeded node")
	}

	none, err := testDB.SearchFulltext(ctx, "xyzzyplugh", 10)
	if err != nil {
		t.Fatalf("SearchFulltext with no matches failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no matches, got %d", len(none))
	}
}

func TestSearchVector(t *testing.T) {
	ctx := context.Background()

	node, err := testDB.CreateNode(ctx, models.NodeInput{
		Name:      "Embedded",
		Content:   "node with an embedding",
		Type:      "Fact",
		Embedding: dummyEmbedding(),
	})
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	defer func() {
		_, _, _ = testDB.DeleteNode(ctx, models.MustRecordIDString(node.ID))
	}()

	results, err := testDB.SearchVector(ctx, dummyEmbedding(), 5)
	if err != nil {
		t.Fatalf("SearchVector failed: %v", err)
	}
	if len(results) == 0 {
		t.Error("SearchVector should return the embedded node")
	}
}

func TestSearchHybrid(t *testing.T) {
	ctx := context.Background()

	node, err := testDB.CreateNode(ctx, models.NodeInput{
		Name:      "Hybrid Target",
		Content:   "SurrealDB stores graphs and documents",
		Type:      "Fact",
		Embedding: dummyEmbedding(),
	})
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	defer func() {
		_, _, _ = testDB.DeleteNode(ctx, models.MustRecordIDString(node.ID))
	}()

	results, err := testDB.SearchHybrid(ctx, "graphs documents", dummyEmbedding(), 5)
	if err != nil {
		t.Fatalf("SearchHybrid failed: %v", err)
	}
	if len(results) == 0 {
		t.Log("SearchHybrid returned no results (RRF may rank dummy embeddings out)")
	}
}

// =============================================================================
// JOB TESTS
// =============================================================================

func TestJobLifecycle(t *testing.T) {
	ctx := context.Background()

	if err := testDB.CreateJob(ctx, "job-lifecycle-test", "ingest"); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	record, err := testDB.GetJob(ctx, "job-lifecycle-test")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if record == nil {
		t.Fatal("GetJob returned nil for existing job")
	}
	if record.State != "pending" {
		t.Errorf("Expected state 'pending', got %q", record.State)
	}
	if record.JobType != "ingest" {
		t.Errorf("Expected job_type 'ingest', got %q", record.JobType)
	}

	if err := testDB.UpdateJobState(ctx, "job-lifecycle-test", "running"); err != nil {
		t.Fatalf("UpdateJobState failed: %v", err)
	}
	record, _ = testDB.GetJob(ctx, "job-lifecycle-test")
	if record.State != "running" {
		t.Errorf("Expected state 'running', got %q", record.State)
	}

	if err := testDB.CompleteJob(ctx, "job-lifecycle-test", map[string]any{"chunk_count": 3}); err != nil {
		t.Fatalf("CompleteJob failed: %v", err)
	}
	record, _ = testDB.GetJob(ctx, "job-lifecycle-test")
	if record.State != "completed" {
		t.Errorf("Expected state 'completed', got %q", record.State)
	}
	if record.Result == nil {
		t.Error("Completed job should carry a result")
	}
	if !record.UpdatedAt.After(record.CreatedAt) {
		t.Error("updated_at should advance past created_at")
	}
}

func TestFailJob(t *testing.T) {
	ctx := context.Background()

	if err := testDB.CreateJob(ctx, "job-fail-test", "fact"); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	if err := testDB.FailJob(ctx, "job-fail-test", "backend unavailable"); err != nil {
		t.Fatalf("FailJob failed: %v", err)
	}

	record, err := testDB.GetJob(ctx, "job-fail-test")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if record.State != "failed" {
		t.Errorf("Expected state 'failed', got %q", record.State)
	}
	if record.Error == nil || *record.Error != "backend unavailable" {
		t.Errorf("Expected error 'backend unavailable', got %v", record.Error)
	}
}

func TestGetJobNonExistent(t *testing.T) {
	ctx := context.Background()

	record, err := testDB.GetJob(ctx, "never-created")
	if err != nil {
		t.Fatalf("GetJob with unknown id should not error: %v", err)
	}
	if record != nil {
		t.Error("GetJob with unknown id should return nil")
	}
}
