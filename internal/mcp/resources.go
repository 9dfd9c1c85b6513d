package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

const stateResourceURI = "trainset://state"

func (s *Server) registerResources() {
	// ── trainset://state ───────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		stateResourceURI,
		"Input Session",
		mcp.WithResourceDescription("Collected files and review choice of the current session"),
		mcp.WithMIMEType("application/json"),
	), s.handleStateResource)
}

func (s *Server) handleStateResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.summary(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      stateResourceURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
