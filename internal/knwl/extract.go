package knwl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/knwl-ai/knwld/internal/metrics"
	"github.com/knwl-ai/knwld/internal/models"
)

// extractedEntity is one ENTITY line from the model output.
type extractedEntity struct {
	Name        string
	Type        string
	Description string
}

// extractedRelation is one RELATION line from the model output.
type extractedRelation struct {
	Source  string
	Target  string
	RelType string
}

// extractGraph runs LLM entity extraction over the ingested text and
// stores the resulting entities and relations, linking each entity to
// the document node.
func (e *Engine) extractGraph(ctx context.Context, docID, text string, result *IngestResult) error {
	start := time.Now()
	raw, err := e.model.ExtractEntitiesAndRelations(ctx, text)
	e.observe(metrics.OpLLMGenerate, start)
	if err != nil {
		return fmt.Errorf("extract entities: %w", err)
	}

	entities, relations := parseExtraction(raw)
	if len(entities) == 0 {
		return nil
	}

	// Entity names map to node ids so relations can reference them.
	entityIDs := make(map[string]string, len(entities))
	for _, ent := range entities {
		node, err := e.createNode(ctx, models.NodeInput{
			ID:      models.Slugify(ent.Name),
			Name:    ent.Name,
			Content: ent.Description,
			Type:    ent.Type,
			Source:  docID,
		})
		if err != nil {
			return fmt.Errorf("create entity node %q: %w", ent.Name, err)
		}
		id := models.MustRecordIDString(node.ID)
		entityIDs[strings.ToLower(ent.Name)] = id
		result.NodeIDs = append(result.NodeIDs, id)

		if err := e.relate(ctx, docID, id, "mentions"); err != nil {
			return err
		}
		result.EdgeCount++
	}

	for _, rel := range relations {
		from, ok := entityIDs[strings.ToLower(rel.Source)]
		if !ok {
			continue
		}
		to, ok := entityIDs[strings.ToLower(rel.Target)]
		if !ok {
			continue
		}
		if err := e.relate(ctx, from, to, rel.RelType); err != nil {
			return err
		}
		result.EdgeCount++
	}
	return nil
}

// parseExtraction reads the line format produced by the extraction
// prompt:
//
//	ENTITY|name|type|description
//	RELATION|source|target|relation_type|description
//
// Malformed lines are skipped.
func parseExtraction(raw string) ([]extractedEntity, []extractedRelation) {
	var entities []extractedEntity
	var relations []extractedRelation

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case strings.HasPrefix(line, "ENTITY|") && len(parts) >= 3 && parts[1] != "":
			ent := extractedEntity{Name: parts[1], Type: parts[2]}
			if ent.Type == "" {
				ent.Type = DefaultFactType
			}
			if len(parts) >= 4 {
				ent.Description = parts[3]
			}
			entities = append(entities, ent)

		case strings.HasPrefix(line, "RELATION|") && len(parts) >= 4 && parts[1] != "" && parts[2] != "":
			rel := extractedRelation{Source: parts[1], Target: parts[2], RelType: parts[3]}
			if rel.RelType == "" {
				rel.RelType = "related_to"
			}
			relations = append(relations, rel)
		}
	}
	return entities, relations
}
