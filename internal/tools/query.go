package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/knwl-ai/knwld/internal/service"
)

// AskInput defines the input schema for the ask_question tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"required,The question to ask"`
	Strategy string `json:"strategy,omitempty" jsonschema:"Retrieval strategy: hybrid (default) fulltext or vector"`
}

// AugmentInput defines the input schema for the augment_text tool.
type AugmentInput struct {
	Text     string `json:"text" jsonschema:"required,The text to augment"`
	Strategy string `json:"strategy,omitempty" jsonschema:"Retrieval strategy: hybrid (default) fulltext or vector"`
}

// NewAskHandler creates the ask_question tool handler.
func NewAskHandler(deps *Dependencies) mcp.ToolHandlerFor[AskInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, any, error) {
		answer, err := deps.Service.AskQuestion(ctx, input.Question, input.Strategy)
		if err != nil {
			if service.IsValidation(err) {
				return ErrorResult(err.Error(), "Provide a question"), nil, nil
			}
			deps.Logger.Error("ask failed", "error", err)
			return ErrorResult("Failed to answer question", ""), nil, nil
		}

		queryLog := input.Question
		if len(queryLog) > 30 {
			queryLog = queryLog[:30] + "..."
		}
		deps.Logger.Info("question answered", "question", queryLog, "sources", len(answer.Sources))

		return JSONResult(answer), nil, nil
	}
}

// NewAugmentHandler creates the augment_text tool handler.
func NewAugmentHandler(deps *Dependencies) mcp.ToolHandlerFor[AugmentInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AugmentInput) (*mcp.CallToolResult, any, error) {
		augmented, err := deps.Service.Augment(ctx, input.Text, input.Strategy)
		if err != nil {
			if service.IsValidation(err) {
				return ErrorResult(err.Error(), "Provide the text to augment"), nil, nil
			}
			deps.Logger.Error("augment failed", "error", err)
			return ErrorResult("Failed to augment text", ""), nil, nil
		}
		return JSONResult(augmented), nil, nil
	}
}
