package knwl

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/knwl-ai/knwld/internal/models"
)

// fakeStore keeps nodes and edges in memory and records which search
// was used so strategy dispatch can be asserted on.
type fakeStore struct {
	nodes      map[string]models.Node
	edges      []models.EdgeInput
	nextID     int
	lastSearch string
	searchHits []models.Node
}

func newFakeStore() *fakeStore {
	return &fakeStore{nodes: make(map[string]models.Node)}
}

func (s *fakeStore) CreateNode(_ context.Context, in models.NodeInput) (*models.Node, error) {
	id := in.ID
	if id == "" {
		s.nextID++
		id = fmt.Sprintf("n%d", s.nextID)
	}
	if existing, ok := s.nodes[id]; ok && existing.Content != in.Content {
		return nil, fmt.Errorf("node %s: already exists", id)
	}
	node := models.Node{
		ID:      surrealmodels.RecordID{Table: "node", ID: id},
		Name:    in.Name,
		Content: in.Content,
		Type:    in.Type,
	}
	if in.Source != "" {
		src := in.Source
		node.Source = &src
	}
	s.nodes[id] = node
	return &node, nil
}

func (s *fakeStore) GetNode(_ context.Context, id string) (*models.Node, error) {
	node, ok := s.nodes[id]
	if !ok {
		return nil, nil
	}
	return &node, nil
}

func (s *fakeStore) DeleteNode(_ context.Context, id string) (bool, int, error) {
	if _, ok := s.nodes[id]; !ok {
		return false, 0, nil
	}
	delete(s.nodes, id)
	removed := 0
	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.From == id || e.To == id {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.edges = kept
	return true, removed, nil
}

func (s *fakeStore) NodeCount(context.Context) (int, error) { return len(s.nodes), nil }
func (s *fakeStore) EdgeCount(context.Context) (int, error) { return len(s.edges), nil }

func (s *fakeStore) RelateNodes(_ context.Context, in models.EdgeInput) error {
	s.edges = append(s.edges, in)
	return nil
}

func (s *fakeStore) SearchFulltext(context.Context, string, int) ([]models.Node, error) {
	s.lastSearch = "fulltext"
	return s.searchHits, nil
}

func (s *fakeStore) SearchVector(context.Context, []float32, int) ([]models.Node, error) {
	s.lastSearch = "vector"
	return s.searchHits, nil
}

func (s *fakeStore) SearchHybrid(context.Context, string, []float32, int) ([]models.Node, error) {
	s.lastSearch = "hybrid"
	return s.searchHits, nil
}

func (s *fakeStore) Namespace() string { return "test" }

type fakeModel struct {
	extraction string
	answer     string
}

func (m *fakeModel) SynthesizeAnswer(_ context.Context, question, context string) (string, error) {
	if m.answer != "" {
		return m.answer, nil
	}
	return "answer to " + question, nil
}

func (m *fakeModel) ExtractEntitiesAndRelations(context.Context, string) (string, error) {
	return m.extraction, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func (fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func TestIngestWithoutModel(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, nil)

	result, err := engine.Ingest(context.Background(), Input{
		Text: "The quick brown fox jumps over the lazy dog.",
		Name: "fox",
	})
	require.NoError(t, err)

	// One document node plus one chunk for short text.
	assert.Equal(t, 1, result.ChunkCount)
	assert.Len(t, result.NodeIDs, 2)
	assert.Equal(t, 1, result.EdgeCount)

	doc, err := store.GetNode(context.Background(), result.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Document", doc.Type)
}

func TestIngestDerivedNameKeepsRunesIntact(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, nil)

	// No name given: the document name is cut from the text, which
	// here is entirely multi-byte characters.
	result, err := engine.Ingest(context.Background(), Input{
		Text: strings.Repeat("ü", 120),
	})
	require.NoError(t, err)

	doc, err := store.GetNode(context.Background(), result.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.True(t, utf8.ValidString(doc.Name), "derived name must not split a rune")
	assert.Equal(t, 80, utf8.RuneCountInString(doc.Name))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 80))
	assert.Equal(t, "abc", snippet("abcdef", 3))

	cut := snippet(strings.Repeat("é", 10), 5)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, strings.Repeat("é", 5), cut)
}

func TestIngestExtractsEntities(t *testing.T) {
	store := newFakeStore()
	model := &fakeModel{extraction: strings.Join([]string{
		"ENTITY|SurrealDB|Technology|A multi-model database",
		"ENTITY|Go|Language|A programming language",
		"RELATION|SurrealDB|Go|written_in|the database is written in go",
		"RELATION|SurrealDB|Rust|written_in|unknown target is skipped",
		"garbage line",
	}, "\n")}
	engine := NewEngine(store, nil, WithModel(model))

	result, err := engine.Ingest(context.Background(), Input{Text: "some text", Name: "doc"})
	require.NoError(t, err)

	// Document + chunk + two entities.
	assert.Len(t, result.NodeIDs, 4)
	// contains + two mentions + one relation; the dangling one dropped.
	assert.Equal(t, 4, result.EdgeCount)

	node, err := store.GetNode(context.Background(), "surrealdb")
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "SurrealDB", node.Name)
	assert.Equal(t, "Technology", node.Type)
}

func TestAddFactDefaultsType(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, nil)

	node, err := engine.AddFact(context.Background(), Fact{
		Name:    "capital",
		Content: "Paris is the capital of France",
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultFactType, node.Type)
}

func TestAddFactHonorsID(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, nil)

	node, err := engine.AddFact(context.Background(), Fact{
		ID:      "fact-1",
		Name:    "capital",
		Content: "Paris is the capital of France",
		Type:    "Geography",
	})
	require.NoError(t, err)
	assert.Equal(t, "fact-1", node.ID)

	got, err := engine.GetNodeByID(context.Background(), "fact-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Paris is the capital of France", got.Content)
	assert.Equal(t, "Geography", got.Type)
}

func TestGetNodeByIDAbsent(t *testing.T) {
	engine := NewEngine(newFakeStore(), nil)

	node, err := engine.GetNodeByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, node)
}

func TestDeleteNodeByIDAbsent(t *testing.T) {
	engine := NewEngine(newFakeStore(), nil)

	result, err := engine.DeleteNodeByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, result.Deleted)
	assert.Zero(t, result.EdgesRemoved)
}

func TestAskWithoutModelReturnsContext(t *testing.T) {
	store := newFakeStore()
	store.searchHits = []models.Node{{
		ID:      surrealmodels.RecordID{Table: "node", ID: "n1"},
		Name:    "fox",
		Content: "foxes are quick",
		Type:    "Fact",
	}}
	engine := NewEngine(store, nil)

	answer, err := engine.Ask(context.Background(), "how quick are foxes?", StrategyFulltext)
	require.NoError(t, err)
	assert.Contains(t, answer.Answer, "foxes are quick")
	assert.Len(t, answer.Sources, 1)
	assert.Equal(t, "fulltext", store.lastSearch)
}

func TestAskSynthesizes(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, nil, WithModel(&fakeModel{answer: "very quick"}))

	answer, err := engine.Ask(context.Background(), "how quick?", StrategyFulltext)
	require.NoError(t, err)
	assert.Equal(t, "very quick", answer.Answer)
}

func TestRetrieveStrategyDispatch(t *testing.T) {
	t.Run("vector without embedder fails", func(t *testing.T) {
		engine := NewEngine(newFakeStore(), nil)
		_, err := engine.Augment(context.Background(), "text", StrategyVector)
		require.Error(t, err)
	})

	t.Run("hybrid falls back to fulltext without embedder", func(t *testing.T) {
		store := newFakeStore()
		engine := NewEngine(store, nil)
		_, err := engine.Augment(context.Background(), "text", StrategyHybrid)
		require.NoError(t, err)
		assert.Equal(t, "fulltext", store.lastSearch)
	})

	t.Run("hybrid with embedder", func(t *testing.T) {
		store := newFakeStore()
		engine := NewEngine(store, nil, WithEmbedder(fakeEmbedder{}))
		_, err := engine.Augment(context.Background(), "text", StrategyHybrid)
		require.NoError(t, err)
		assert.Equal(t, "hybrid", store.lastSearch)
	})

	t.Run("vector with embedder", func(t *testing.T) {
		store := newFakeStore()
		engine := NewEngine(store, nil, WithEmbedder(fakeEmbedder{}))
		_, err := engine.Augment(context.Background(), "text", StrategyVector)
		require.NoError(t, err)
		assert.Equal(t, "vector", store.lastSearch)
	})

	t.Run("unknown strategy fails", func(t *testing.T) {
		engine := NewEngine(newFakeStore(), nil)
		_, err := engine.Augment(context.Background(), "text", "cosine")
		require.Error(t, err)
	})
}

func TestParseExtraction(t *testing.T) {
	entities, relations := parseExtraction(strings.Join([]string{
		"ENTITY|Alpha|Person|first",
		"ENTITY||Person|no name, skipped",
		"ENTITY|Beta|",
		"RELATION|Alpha|Beta|knows|desc",
		"RELATION|Alpha||knows|no target, skipped",
		"Some preamble the model added.",
	}, "\n"))

	require.Len(t, entities, 2)
	assert.Equal(t, "Alpha", entities[0].Name)
	// Missing type falls back to the default fact type.
	assert.Equal(t, DefaultFactType, entities[1].Type)

	require.Len(t, relations, 1)
	assert.Equal(t, "knows", relations[0].RelType)
}
