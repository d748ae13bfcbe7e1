package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// infoURI is the URI of the server info resource.
const infoURI = "text://info"

// serverInfo is the payload served by the info resource.
type serverInfo struct {
	Version     string `json:"version"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RegisterAll registers all tools and resources with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies, version string) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "node_count",
		Description: "Get the total number of nodes in the knowledge graph",
	}, NewNodeCountHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "edge_count",
		Description: "Get the total number of edges in the knowledge graph",
	}, NewEdgeCountHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "namespace",
		Description: "Get the current namespace of the knowledge graph",
	}, NewNamespaceHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_node",
		Description: "Retrieve a node from the knowledge graph by its ID",
	}, NewGetNodeHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_node",
		Description: "Delete a node from the knowledge graph by its ID",
	}, NewDeleteNodeHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ingest",
		Description: "Ingest text into the knowledge graph as a background job; poll with get_job_status",
	}, NewIngestHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_fact",
		Description: "Add a fact to the knowledge graph as a background job; poll with get_job_status",
	}, NewAddFactHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_job_status",
		Description: "Get the status of a background job (ingestion or fact addition)",
	}, NewJobStatusHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_question",
		Description: "Ask a question to the knowledge graph and get an answer",
	}, NewAskHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "augment_text",
		Description: "Augment text with context from the knowledge graph for RAG applications",
	}, NewAugmentHandler(deps))

	registerInfoResource(server, version)
}

// registerInfoResource serves static server metadata at text://info.
func registerInfoResource(server *mcp.Server, version string) {
	payload, _ := json.Marshal(serverInfo{
		Version:     version,
		Name:        "Knwl Knowledge Graph MCP API",
		Description: "MCP API for Knwl knowledge graph operations",
	})

	server.AddResource(&mcp.Resource{
		URI:      infoURI,
		Name:     "info",
		MIMEType: "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      infoURI,
				MIMEType: "application/json",
				Text:     string(payload),
			}},
		}, nil
	})
}
