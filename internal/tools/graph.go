package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/knwl-ai/knwld/internal/service"
)

// NodeCountInput is empty; the tool takes no arguments.
type NodeCountInput struct{}

// EdgeCountInput is empty; the tool takes no arguments.
type EdgeCountInput struct{}

// NamespaceInput is empty; the tool takes no arguments.
type NamespaceInput struct{}

// NodeInput identifies a node by id.
type NodeInput struct {
	NodeID string `json:"node_id" jsonschema:"required,The unique identifier of the node"`
}

// NewNodeCountHandler creates the node_count tool handler.
func NewNodeCountHandler(deps *Dependencies) mcp.ToolHandlerFor[NodeCountInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, _ NodeCountInput) (*mcp.CallToolResult, any, error) {
		count, err := deps.Service.NodeCount(ctx)
		if err != nil {
			deps.Logger.Error("node count failed", "error", err)
			return ErrorResult("Failed to count nodes", "Database may be unavailable"), nil, nil
		}
		return TextResult(fmt.Sprintf("%d", count)), nil, nil
	}
}

// NewEdgeCountHandler creates the edge_count tool handler.
func NewEdgeCountHandler(deps *Dependencies) mcp.ToolHandlerFor[EdgeCountInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, _ EdgeCountInput) (*mcp.CallToolResult, any, error) {
		count, err := deps.Service.EdgeCount(ctx)
		if err != nil {
			deps.Logger.Error("edge count failed", "error", err)
			return ErrorResult("Failed to count edges", "Database may be unavailable"), nil, nil
		}
		return TextResult(fmt.Sprintf("%d", count)), nil, nil
	}
}

// NewNamespaceHandler creates the namespace tool handler.
func NewNamespaceHandler(deps *Dependencies) mcp.ToolHandlerFor[NamespaceInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, _ NamespaceInput) (*mcp.CallToolResult, any, error) {
		return TextResult(deps.Service.Namespace()), nil, nil
	}
}

// NewGetNodeHandler creates the get_node tool handler.
func NewGetNodeHandler(deps *Dependencies) mcp.ToolHandlerFor[NodeInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input NodeInput) (*mcp.CallToolResult, any, error) {
		if input.NodeID == "" {
			return ErrorResult("node_id cannot be empty", "Provide the node id"), nil, nil
		}

		node, err := deps.Service.GetNodeByID(ctx, input.NodeID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return ErrorResult(fmt.Sprintf("Node %s not found", input.NodeID), "Check the node id"), nil, nil
			}
			deps.Logger.Error("get node failed", "node_id", input.NodeID, "error", err)
			return ErrorResult("Failed to retrieve node", "Database may be unavailable"), nil, nil
		}
		return JSONResult(node), nil, nil
	}
}

// NewDeleteNodeHandler creates the delete_node tool handler.
func NewDeleteNodeHandler(deps *Dependencies) mcp.ToolHandlerFor[NodeInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input NodeInput) (*mcp.CallToolResult, any, error) {
		if input.NodeID == "" {
			return ErrorResult("node_id cannot be empty", "Provide the node id"), nil, nil
		}

		result, err := deps.Service.DeleteNodeByID(ctx, input.NodeID)
		if err != nil {
			deps.Logger.Error("delete node failed", "node_id", input.NodeID, "error", err)
			return ErrorResult("Failed to delete node", "Database may be unavailable"), nil, nil
		}
		deps.Logger.Info("node deleted", "node_id", input.NodeID, "deleted", result.Deleted)
		return JSONResult(result), nil, nil
	}
}
