// Package parser provides text chunking and document metadata extraction.
package parser

import (
	"strings"
	"unicode"
)

// Chunk is one piece of a split document.
type Chunk struct {
	Content  string
	Position int
}

// ChunkConfig defines chunking parameters.
type ChunkConfig struct {
	// Threshold: only chunk if content exceeds this length
	Threshold int
	// TargetSize: ideal chunk size
	TargetSize int
	// MaxSize: maximum chunk size (larger paragraphs split at sentences)
	MaxSize int
	// Overlap: character overlap between chunks
	Overlap int
}

// DefaultChunkConfig returns sensible defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Threshold:  1500,
		TargetSize: 750,
		MaxSize:    1000,
		Overlap:    100,
	}
}

// ChunkText splits free-form text into chunks at paragraph boundaries,
// falling back to sentence boundaries for oversized paragraphs.
// Content below the threshold is returned as a single chunk; blank
// input produces no chunks.
func ChunkText(content string, config ChunkConfig) []Chunk {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) <= config.Threshold {
		return []Chunk{{Content: trimmed, Position: 0}}
	}

	chunks := chunkByParagraphs(trimmed, config)
	return applyOverlap(chunks, config.Overlap)
}

func chunkByParagraphs(content string, config ChunkConfig) []Chunk {
	paragraphs := strings.Split(content, "\n\n")

	var chunks []Chunk
	var current strings.Builder
	position := 0

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, Chunk{
				Content:  strings.TrimSpace(current.String()),
				Position: position,
			})
			position++
			current.Reset()
		}
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if current.Len()+len(para) > config.MaxSize && current.Len() > 0 {
			flush()
		}

		if len(para) > config.MaxSize {
			flush()
			for _, sc := range chunkBySentences(para, config) {
				chunks = append(chunks, Chunk{Content: sc, Position: position})
				position++
			}
			continue
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}

	flush()
	return chunks
}

func chunkBySentences(text string, config ChunkConfig) []string {
	sentences := splitSentences(text)

	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		if current.Len()+len(sentence) > config.TargetSize && current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				// Skip likely abbreviations like "Dr."
				if i > 1 && unicode.IsUpper(runes[i-1]) {
					continue
				}
				sentences = append(sentences, current.String())
				current.Reset()
			}
		}
	}

	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}

	return sentences
}

// applyOverlap prefixes each chunk with the tail of its predecessor so
// retrieval does not lose context at chunk boundaries.
func applyOverlap(chunks []Chunk, overlap int) []Chunk {
	if overlap <= 0 || len(chunks) <= 1 {
		return chunks
	}

	result := make([]Chunk, len(chunks))
	copy(result, chunks)

	for i := 1; i < len(result); i++ {
		prev := result[i-1].Content
		if len(prev) > overlap {
			tail := prev[len(prev)-overlap:]
			if spaceIdx := strings.LastIndex(tail, " "); spaceIdx > 0 {
				tail = tail[spaceIdx+1:]
			}
			result[i].Content = tail + " " + result[i].Content
		}
	}

	return result
}
