// Package mcpserver exposes mockup generation to MCP clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jbonatakis/mockingbird/internal/engine"
	"github.com/jbonatakis/mockingbird/internal/mockup"
)

const historyURI = "mockingbird://history"

// Server wraps the MCP server around a Session. Tool calls that start runs
// are serialized so one client call cannot supersede another.
type Server struct {
	mcpServer *mcpserver.MCPServer
	session   *engine.Session
	logger    *slog.Logger
	runMu     sync.Mutex
}

func New(session *engine.Session, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{session: session, logger: logger}
	s.mcpServer = mcpserver.NewMCPServer(
		"mockingbird",
		version,
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithToolCapabilities(false),
	)
	s.registerResources()
	s.registerTools()
	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the server over the given streams until ctx is done or
// the input closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := mcpserver.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, in, out)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			historyURI,
			"Generation History",
			mcplib.WithResourceDescription("Recent generation runs, newest first"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleHistoryResource,
	)
}

func (s *Server) handleHistoryResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(historyItems(s.session.Snapshot().History), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal history: %w", err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      historyURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

type historyItem struct {
	ID     string      `json:"id"`
	Mode   mockup.Mode `json:"mode"`
	Title  string      `json:"title"`
	Badge  string      `json:"badge"`
	Detail string      `json:"detail"`
}

func historyItems(entries []mockup.HistoryEntry) []historyItem {
	items := make([]historyItem, 0, len(entries))
	for _, e := range entries {
		sum := e.Summary()
		items = append(items, historyItem{ID: e.ID, Mode: e.Mode(), Title: sum.Title, Badge: sum.Badge, Detail: sum.Detail})
	}
	return items
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

func jsonResult(v any) *mcplib.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Sprintf("encode result: %v", err))
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: string(data)},
		},
	}
}
