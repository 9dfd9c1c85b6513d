package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"trainset/internal/domain"
	"trainset/internal/service"
)

// stateSummary is the session without file contents.
type stateSummary struct {
	SessionID  string            `json:"sessionId"`
	Counter    int               `json:"textFileCounter"`
	Files      []domain.FileView `json:"files"`
	ReviewFlag bool              `json:"reviewFlag"`
	ShowButton bool              `json:"showButton"`
	CanProceed bool              `json:"canProceed"`
	Done       bool              `json:"done"`
}

func (s *Server) summary() stateSummary {
	st := s.inputs.State()
	return stateSummary{
		SessionID:  st.SessionID,
		Counter:    st.TextFileCounter,
		Files:      s.inputs.FileViews(),
		ReviewFlag: st.ReviewFlag,
		ShowButton: st.ShowButton,
		CanProceed: st.CanProceed(),
		Done:       st.Done,
	}
}

func (s *Server) registerInputTools() {
	// ── start_session ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a new input session, discarding the collected files"),
		mcp.WithNumber("counter", mcp.Description("Initial text file counter (default 0)")),
		mcp.WithBoolean("showButton", mcp.Description("Whether finishing the session is allowed (default true)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleStartSession)

	// ── add_url ────────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_url",
		mcp.WithDescription("Add an http(s) URL to the training set. It is stored as a .url file named after the address."),
		mcp.WithString("url", mcp.Description("Absolute http or https URL"), mcp.Required()),
	), s.handleAddURL)

	// ── add_text ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_text",
		mcp.WithDescription("Add pasted text to the training set as textfile-<n>.txt"),
		mcp.WithString("text", mcp.Description("Text content"), mcp.Required()),
	), s.handleAddText)

	// ── add_files ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_files",
		mcp.WithDescription("Add local files to the training set. Files whose name is already collected are skipped."),
		mcp.WithArray("paths",
			mcp.Description("Absolute file paths"),
			mcp.Items(map[string]any{"type": "string"}),
			mcp.Required(),
		),
	), s.handleAddFiles)

	// ── list_files ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_files",
		mcp.WithDescription("List the collected files with their size and type"),
	), s.handleListFiles)

	// ── get_state ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Get the current input session"),
	), s.handleGetState)

	// ── set_review ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_review",
		mcp.WithDescription("Choose whether the generated training data should be reviewed manually"),
		mcp.WithBoolean("review", mcp.Description("Review manually"), mcp.Required()),
	), s.handleSetReview)

	// ── finish ─────────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("finish",
		mcp.WithDescription("Submit the collected files and move on. Needs at least one file."),
		mcp.WithBoolean("review", mcp.Description("Override the review choice")),
	), s.handleFinish)
}

func (s *Server) handleStartSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	show, ok := boolArg(args, "showButton")
	if !ok {
		show = true
	}
	s.inputs.Start(ctx, domain.InputSeed{Counter: intArg(args, "counter", 0), ShowButton: show})
	return jsonResult(s.summary())
}

func (s *Server) handleAddURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := s.inputs.AddURL(ctx, req.GetString("url", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return textResult(fmt.Sprintf("Added %s", f.Name)), nil
}

func (s *Server) handleAddText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := s.inputs.AddTextFile(ctx, req.GetString("text", ""))
	return textResult(fmt.Sprintf("Added %s (%d bytes)", f.Name, f.Size)), nil
}

func (s *Server) handleAddFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths := stringsArg(req.GetArguments(), "paths")
	if len(paths) == 0 {
		return errorResult(errors.New("paths is required")), nil
	}
	if s.files == nil {
		return errorResult(errors.New("file access is not available")), nil
	}
	files := s.files.Ingest(paths)
	added := s.inputs.DropFiles(ctx, files)
	return textResult(fmt.Sprintf("Added %d of %d files (%d unreadable, %d already collected)",
		added, len(paths), len(paths)-len(files), len(files)-added)), nil
}

func (s *Server) handleListFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.inputs.FileViews())
}

func (s *Server) handleGetState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.summary())
}

func (s *Server) handleSetReview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	review, ok := boolArg(req.GetArguments(), "review")
	if !ok {
		return errorResult(errors.New("review is required")), nil
	}
	s.inputs.SetReviewFlag(review)
	return textResult(fmt.Sprintf("Manual review: %t", review)), nil
}

func (s *Server) handleFinish(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var err error
	if review, ok := boolArg(req.GetArguments(), "review"); ok {
		err = s.inputs.Finish(ctx, review)
	} else {
		err = s.inputs.Done(ctx)
	}
	if errors.Is(err, service.ErrNotReady) {
		return errorResult(fmt.Errorf("%w: collect at least one file first, and check the session allows finishing", err)), nil
	}
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(s.summary())
}

func boolPtr(b bool) *bool { return &b }
