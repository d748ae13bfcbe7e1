package parser

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is text with optional metadata lifted from YAML frontmatter.
type Document struct {
	Frontmatter map[string]any
	Name        string
	Description string
	Content     string
}

// ParseDocument splits off a leading YAML frontmatter block, if any,
// and lifts name/description metadata from it. Malformed YAML is
// ignored rather than rejected; the block then stays in the content.
func ParseDocument(content string) *Document {
	doc := &Document{
		Frontmatter: make(map[string]any),
		Content:     content,
	}

	if !strings.HasPrefix(content, "---\n") {
		return doc
	}
	endIdx := strings.Index(content[4:], "\n---")
	if endIdx <= 0 {
		return doc
	}

	block := content[4 : 4+endIdx]
	var fm map[string]any
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return doc
	}

	doc.Frontmatter = fm
	doc.Content = strings.TrimPrefix(content[4+endIdx+4:], "\n")
	if name, ok := fm["name"].(string); ok {
		doc.Name = name
	} else if title, ok := fm["title"].(string); ok {
		doc.Name = title
	}
	if desc, ok := fm["description"].(string); ok {
		doc.Description = desc
	}
	return doc
}
