package knwl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/knwl-ai/knwld/internal/db"
	"github.com/knwl-ai/knwld/internal/metrics"
	"github.com/knwl-ai/knwld/internal/models"
	"github.com/knwl-ai/knwld/internal/parser"
)

// Store is the subset of database operations the engine uses.
// Satisfied by *db.Client.
type Store interface {
	CreateNode(ctx context.Context, in models.NodeInput) (*models.Node, error)
	GetNode(ctx context.Context, id string) (*models.Node, error)
	DeleteNode(ctx context.Context, id string) (bool, int, error)
	NodeCount(ctx context.Context) (int, error)
	EdgeCount(ctx context.Context) (int, error)
	RelateNodes(ctx context.Context, in models.EdgeInput) error
	SearchFulltext(ctx context.Context, query string, limit int) ([]models.Node, error)
	SearchVector(ctx context.Context, embedding []float32, limit int) ([]models.Node, error)
	SearchHybrid(ctx context.Context, query string, embedding []float32, limit int) ([]models.Node, error)
	Namespace() string
}

var _ Store = (*db.Client)(nil)

// LanguageModel is the generation capability the engine needs.
// Satisfied by *llm.Model.
type LanguageModel interface {
	SynthesizeAnswer(ctx context.Context, question, context string) (string, error)
	ExtractEntitiesAndRelations(ctx context.Context, text string) (string, error)
}

// TextEmbedder is the embedding capability the engine needs.
// Satisfied by *llm.Embedder.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// retrievalLimit bounds how many nodes ask/augment pull from the graph.
const retrievalLimit = 5

// Engine implements Graph over SurrealDB storage with optional LLM
// synthesis and embeddings. A nil model degrades ingest to document
// nodes and ask to raw context; a nil embedder disables vector search.
type Engine struct {
	store    Store
	model    LanguageModel
	embedder TextEmbedder
	stats    *metrics.Collector
	chunkCfg parser.ChunkConfig
	logger   *slog.Logger
}

var _ Graph = (*Engine)(nil)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithModel sets the language model used for extraction and synthesis.
func WithModel(m LanguageModel) EngineOption {
	return func(e *Engine) { e.model = m }
}

// WithEmbedder sets the embedder used for vector retrieval.
func WithEmbedder(em TextEmbedder) EngineOption {
	return func(e *Engine) { e.embedder = em }
}

// WithMetrics sets the stats collector.
func WithMetrics(c *metrics.Collector) EngineOption {
	return func(e *Engine) { e.stats = c }
}

// WithChunkConfig overrides the default chunking parameters.
func WithChunkConfig(cfg parser.ChunkConfig) EngineOption {
	return func(e *Engine) { e.chunkCfg = cfg }
}

// NewEngine creates a graph engine over the given store.
func NewEngine(store Store, logger *slog.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		store:    store,
		chunkCfg: parser.DefaultChunkConfig(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ingest chunks the text, stores document and chunk nodes, and when a
// language model is configured, extracts entities and relations into
// the graph.
func (e *Engine) Ingest(ctx context.Context, input Input) (*IngestResult, error) {
	start := time.Now()

	name := input.Name
	if name == "" {
		name = snippet(input.Text, 80)
	}

	doc, err := e.createNode(ctx, models.NodeInput{
		Name:    name,
		Content: input.Text,
		Type:    "Document",
		Source:  input.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("create document node: %w", err)
	}
	docID := models.MustRecordIDString(doc.ID)

	result := &IngestResult{
		DocumentID:  docID,
		NodeIDs:     []string{docID},
		Name:        input.Name,
		Description: input.Description,
	}

	chunks := parser.ChunkText(input.Text, e.chunkCfg)
	result.ChunkCount = len(chunks)

	embeddings, err := e.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	for i, chunk := range chunks {
		in := models.NodeInput{
			Name:    fmt.Sprintf("%s [%d]", name, chunk.Position),
			Content: chunk.Content,
			Type:    "Chunk",
			Source:  docID,
		}
		if embeddings != nil {
			in.Embedding = embeddings[i]
		}
		node, err := e.createNode(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("create chunk node: %w", err)
		}
		chunkID := models.MustRecordIDString(node.ID)
		result.NodeIDs = append(result.NodeIDs, chunkID)

		if err := e.relate(ctx, docID, chunkID, "contains"); err != nil {
			return nil, err
		}
		result.EdgeCount++
	}

	if e.model != nil {
		if err := e.extractGraph(ctx, docID, input.Text, result); err != nil {
			// Extraction is best-effort enrichment; the document and
			// chunks are already stored.
			e.logger.Warn("entity extraction failed", "document", docID, "error", err)
		}
	}

	result.ElapsedMilli = time.Since(start).Milliseconds()
	e.logger.Info("ingest complete", "document", docID,
		"nodes", len(result.NodeIDs), "edges", result.EdgeCount, "chunks", result.ChunkCount)
	return result, nil
}

// AddFact stores a single fact node. A caller-supplied id is honored;
// submitting a different fact under an existing id fails.
func (e *Engine) AddFact(ctx context.Context, fact Fact) (*Node, error) {
	factType := fact.Type
	if factType == "" {
		factType = DefaultFactType
	}

	in := models.NodeInput{
		ID:      fact.ID,
		Name:    fact.Name,
		Content: fact.Content,
		Type:    factType,
		Source:  "fact",
	}
	if e.embedder != nil {
		embedding, err := e.embedder.Embed(ctx, fact.Content)
		if err != nil {
			return nil, fmt.Errorf("embed fact: %w", err)
		}
		in.Embedding = embedding
	}

	node, err := e.createNode(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("add fact: %w", err)
	}
	return nodeFromModel(node), nil
}

// NodeCount returns the number of nodes in the graph.
func (e *Engine) NodeCount(ctx context.Context) (int, error) {
	defer e.observe(metrics.OpDBQuery, time.Now())
	return e.store.NodeCount(ctx)
}

// EdgeCount returns the number of edges in the graph.
func (e *Engine) EdgeCount(ctx context.Context) (int, error) {
	defer e.observe(metrics.OpDBQuery, time.Now())
	return e.store.EdgeCount(ctx)
}

// Namespace returns the namespace the graph lives in.
func (e *Engine) Namespace() string {
	return e.store.Namespace()
}

// GetNodeByID returns the node, or nil when it does not exist.
func (e *Engine) GetNodeByID(ctx context.Context, id string) (*Node, error) {
	defer e.observe(metrics.OpDBQuery, time.Now())
	node, err := e.store.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, nil
	}
	return nodeFromModel(node), nil
}

// DeleteNodeByID removes the node and its edges. Deleting an absent
// node reports Deleted=false rather than failing.
func (e *Engine) DeleteNodeByID(ctx context.Context, id string) (*DeleteResult, error) {
	defer e.observe(metrics.OpDBQuery, time.Now())
	deleted, edges, err := e.store.DeleteNode(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DeleteResult{ID: id, Deleted: deleted, EdgesRemoved: edges}, nil
}

// Ask retrieves context for the question and synthesizes an answer.
// Without a language model the retrieved context is returned verbatim.
func (e *Engine) Ask(ctx context.Context, question, strategy string) (*Answer, error) {
	nodes, err := e.retrieve(ctx, question, strategy)
	if err != nil {
		return nil, err
	}

	answer := &Answer{
		Question: question,
		Strategy: strategy,
		Sources:  nodesFromModels(nodes),
	}

	contextText := formatContext(nodes)
	if e.model == nil {
		answer.Answer = contextText
		return answer, nil
	}

	start := time.Now()
	synthesized, err := e.model.SynthesizeAnswer(ctx, question, contextText)
	e.observe(metrics.OpLLMGenerate, start)
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}
	answer.Answer = synthesized
	return answer, nil
}

// Augment retrieves graph context for the given text.
func (e *Engine) Augment(ctx context.Context, text, strategy string) (*Context, error) {
	nodes, err := e.retrieve(ctx, text, strategy)
	if err != nil {
		return nil, err
	}
	return &Context{
		Text:      formatContext(nodes),
		Strategy:  strategy,
		Fragments: nodesFromModels(nodes),
	}, nil
}

func (e *Engine) retrieve(ctx context.Context, query, strategy string) ([]models.Node, error) {
	defer e.observe(metrics.OpDBSearch, time.Now())

	switch strategy {
	case StrategyFulltext:
		return e.store.SearchFulltext(ctx, query, retrievalLimit)

	case StrategyVector:
		if e.embedder == nil {
			return nil, fmt.Errorf("strategy %q requires an embedding provider", strategy)
		}
		embedding, err := e.embedQuery(ctx, query)
		if err != nil {
			return nil, err
		}
		return e.store.SearchVector(ctx, embedding, retrievalLimit)

	case StrategyHybrid:
		if e.embedder == nil {
			// Hybrid degrades to full-text when no embedder is wired.
			return e.store.SearchFulltext(ctx, query, retrievalLimit)
		}
		embedding, err := e.embedQuery(ctx, query)
		if err != nil {
			return nil, err
		}
		return e.store.SearchHybrid(ctx, query, embedding, retrievalLimit)

	default:
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
}

func (e *Engine) embedQuery(ctx context.Context, query string) ([]float32, error) {
	defer e.observe(metrics.OpEmbedding, time.Now())
	embedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return embedding, nil
}

func (e *Engine) embedChunks(ctx context.Context, chunks []parser.Chunk) ([][]float32, error) {
	if e.embedder == nil || len(chunks) == 0 {
		return nil, nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	defer e.observe(metrics.OpEmbedding, time.Now())
	embeddings, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	return embeddings, nil
}

func (e *Engine) createNode(ctx context.Context, in models.NodeInput) (*models.Node, error) {
	defer e.observe(metrics.OpDBQuery, time.Now())
	return e.store.CreateNode(ctx, in)
}

func (e *Engine) relate(ctx context.Context, from, to, relType string) error {
	defer e.observe(metrics.OpDBQuery, time.Now())
	return e.store.RelateNodes(ctx, models.EdgeInput{From: from, To: to, RelType: relType})
}

func (e *Engine) observe(op string, start time.Time) {
	if e.stats != nil {
		e.stats.Observe(op, start)
	}
}

// nodeFromModel converts a stored node to its wire shape.
func nodeFromModel(m *models.Node) *Node {
	node := &Node{
		Name:      m.Name,
		Content:   m.Content,
		Type:      m.Type,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if id, err := models.RecordIDString(m.ID); err == nil {
		node.ID = id
	}
	if m.Source != nil {
		node.Source = *m.Source
	}
	return node
}

func nodesFromModels(ms []models.Node) []Node {
	nodes := make([]Node, 0, len(ms))
	for i := range ms {
		nodes = append(nodes, *nodeFromModel(&ms[i]))
	}
	return nodes
}

// formatContext joins retrieved nodes into a context block.
func formatContext(nodes []models.Node) string {
	if len(nodes) == 0 {
		return ""
	}
	out := ""
	for i := range nodes {
		if i > 0 {
			out += "\n\n"
		}
		out += fmt.Sprintf("## %s (%s)\n%s", nodes[i].Name, nodes[i].Type, nodes[i].Content)
	}
	return out
}

// snippet truncates s to at most max runes, never splitting a
// multi-byte character.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
