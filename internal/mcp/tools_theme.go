package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"trainset/internal/theme"
)

func (s *Server) registerThemeTools() {
	// ── resolve_theme ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resolve_theme",
		mcp.WithDescription("Resolve the active theme name. A ?theme= query on documentUrl is persisted as the new selection."),
		mcp.WithString("documentUrl", mcp.Description("URL of the page the UI is served from (optional)")),
	), s.handleResolveTheme)

	// ── get_theme ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_theme",
		mcp.WithDescription("Get the active theme configuration and its CSS variables"),
		mcp.WithString("documentUrl", mcp.Description("URL of the page the UI is served from (optional)")),
		mcp.WithString("mode", mcp.Description("Colour scheme for the CSS: light or dark (default dark)")),
	), s.handleGetTheme)

	// ── set_theme ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_theme",
		mcp.WithDescription(fmt.Sprintf("Persist a theme selection. Known themes: %v", theme.Names())),
		mcp.WithString("name", mcp.Description("Theme name"), mcp.Required()),
	), s.handleSetTheme)

	// ── clear_theme ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("clear_theme",
		mcp.WithDescription("Forget the persisted theme selection"),
	), s.handleClearTheme)
}

func (s *Server) envFromArgs(req mcp.CallToolRequest) (theme.Env, error) {
	raw := req.GetString("documentUrl", "")
	if raw == "" {
		return theme.EnvForHost(s.host), nil
	}
	return theme.EnvFromURL(raw)
}

func (s *Server) handleResolveTheme(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	env, err := s.envFromArgs(req)
	if err != nil {
		return errorResult(err), nil
	}
	return textResult(s.themes.ResolveName(ctx, env)), nil
}

func (s *Server) handleGetTheme(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	env, err := s.envFromArgs(req)
	if err != nil {
		return errorResult(err), nil
	}
	active := s.themes.Active(ctx, env)
	return jsonResult(struct {
		Name   string       `json:"name"`
		Config theme.Config `json:"config"`
		CSS    string       `json:"css"`
	}{
		Name:   active.Name,
		Config: active.Config,
		CSS:    active.Config.CSSVariables(theme.ParseMode(req.GetString("mode", ""))),
	})
}

func (s *Server) handleSetTheme(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if err := s.themes.SetTheme(ctx, name); err != nil {
		return errorResult(err), nil
	}
	return textResult(fmt.Sprintf("Theme set to %s", name)), nil
}

func (s *Server) handleClearTheme(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.themes.ClearTheme(ctx); err != nil {
		return errorResult(err), nil
	}
	return textResult(fmt.Sprintf("Theme cleared, now %s", s.themes.ResolveName(ctx, theme.Env{}))), nil
}
