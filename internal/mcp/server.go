package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"trainset/internal/domain"
	"trainset/internal/logger"
	"trainset/internal/service"
)

// FileReader loads local files for the add_files tool.
type FileReader interface {
	Ingest(paths []string) []domain.VirtualFile
}

// Server is the MCP server for Trainset.
// It exposes the input session and the theme so AI agents can assemble a
// training set without the desktop UI.
type Server struct {
	mcp *server.MCPServer
	log logger.Logger

	// Services (injected from app layer)
	inputs *service.InputService
	themes *service.ThemeService
	files  FileReader
	host   string
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Inputs *service.InputService
	Themes *service.ThemeService
	Files  FileReader
	Log    logger.Logger
	// Host stands in for the document host when a theme tool gets no documentUrl.
	Host string
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	s := &Server{
		log:    log.With(logger.String("component", "mcp")),
		inputs: deps.Inputs,
		themes: deps.Themes,
		files:  deps.Files,
		host:   deps.Host,
	}

	s.mcp = server.NewMCPServer(
		"trainset-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerInputTools()
	s.registerThemeTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// errorResult reports a failure to the agent as a tool error.
func errorResult(err error) *mcp.CallToolResult {
	res := textResult(err.Error())
	res.IsError = true
	return res
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolArg(args map[string]any, key string) (bool, bool) {
	v, ok := args[key].(bool)
	return v, ok
}

func intArg(args map[string]any, key string, def int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return def
}

func stringsArg(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
