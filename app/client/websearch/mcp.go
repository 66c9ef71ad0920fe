package websearch

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"ludo/app/config"

	"github.com/elliotchance/pie/v2"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

var _ Backend = (*MCP)(nil)

// MCP calls a search tool exposed by an MCP server started over stdio.
// The server is started on first use and restarted after a failed call.
type MCP struct {
	cfg config.MCPSearch

	mu     sync.Mutex
	client client.MCPClient
	tool   mcp.Tool
}

func NewMCP(cfg config.MCPSearch) *MCP {
	return &MCP{cfg: cfg}
}

func (m *MCP) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.connectLocked(ctx); err != nil {
		return nil, err
	}

	callRequest := mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
	}
	callRequest.Params.Name = m.tool.Name
	callRequest.Params.Arguments = toolArguments(m.tool, query, limit)

	response, err := m.client.CallTool(ctx, callRequest)
	if err != nil {
		m.closeLocked()
		return nil, fmt.Errorf("MCP tool call failed: %w", err)
	}

	texts := contentTexts(response.Content)
	if response.IsError {
		return nil, fmt.Errorf("MCP tool returned error: %s", strings.Join(texts, "; "))
	}

	results := pie.Map(texts, func(text string) Result {
		return Result{Snippet: text}
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func (m *MCP) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeLocked()

	return nil
}

func (m *MCP) connectLocked(ctx context.Context) error {
	if m.client != nil {
		return nil
	}

	if m.cfg.Command == "" {
		return fmt.Errorf("MCP search command is not configured")
	}

	mcpClient, err := client.NewStdioMCPClient(m.cfg.Command, nil, m.cfg.Args...)
	if err != nil {
		return fmt.Errorf("failed to create MCP client: %w", err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "ludo",
		Version: "1.0.0",
	}

	if _, err = mcpClient.Initialize(ctx, initRequest); err != nil {
		_ = mcpClient.Close()
		return fmt.Errorf("failed to initialize MCP client: %w", err)
	}

	toolsResponse, err := mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		_ = mcpClient.Close()
		return fmt.Errorf("failed to list MCP tools: %w", err)
	}

	idx := pie.FindFirstUsing(toolsResponse.Tools, func(tool mcp.Tool) bool {
		return tool.Name == m.cfg.Tool
	})
	if idx < 0 {
		_ = mcpClient.Close()
		return fmt.Errorf("MCP server has no tool %q", m.cfg.Tool)
	}

	m.client = mcpClient
	m.tool = toolsResponse.Tools[idx]

	return nil
}

func (m *MCP) closeLocked() {
	if m.client != nil {
		_ = m.client.Close()
		m.client = nil
	}
}

var limitProperties = []string{"max_results", "limit", "count"}

// toolArguments maps query and limit onto the tool's input schema. Without a
// query-like property the query goes into the first other property by name.
func toolArguments(tool mcp.Tool, query string, limit int) map[string]any {
	props := tool.InputSchema.Properties
	args := make(map[string]any)

	switch {
	case hasProperty(props, "query"):
		args["query"] = query
	case hasProperty(props, "q"):
		args["q"] = query
	default:
		name := "input"
		for _, prop := range slices.Sorted(maps.Keys(props)) {
			if !slices.Contains(limitProperties, prop) {
				name = prop
				break
			}
		}
		args[name] = query
	}

	if limit > 0 {
		for _, name := range limitProperties {
			if hasProperty(props, name) {
				args[name] = limit
				break
			}
		}
	}

	return args
}

func hasProperty(props map[string]any, name string) bool {
	_, ok := props[name]
	return ok
}

func contentTexts(contents []mcp.Content) []string {
	var texts []string

	for _, content := range contents {
		var text string
		switch c := content.(type) {
		case mcp.TextContent:
			text = c.Text
		case *mcp.TextContent:
			text = c.Text
		}

		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}

	return texts
}
