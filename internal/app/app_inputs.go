package app

import (
	"encoding/base64"
	"fmt"

	"github.com/wailsapp/mimetype"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"trainset/internal/domain"
	"trainset/internal/logger"
)

// ============================================================
// Input session
// ============================================================

// UploadInput is a file handed over by the webview drop area.
type UploadInput struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	// Content is base64 (standard encoding).
	Content string `json:"content"`
}

// StartSession replaces the current session with one built from seed.
func (a *App) StartSession(seed domain.InputSeed) domain.InputState {
	return a.inputs.Start(a.ctx, seed)
}

// SetPendingURL mirrors the URL input field.
func (a *App) SetPendingURL(v string) {
	a.inputs.SetPendingURL(v)
}

// SetPendingText mirrors the text area.
func (a *App) SetPendingText(v string) {
	a.inputs.SetPendingText(v)
}

// SetReviewFlag mirrors the "review manually" checkbox.
func (a *App) SetReviewFlag(v bool) {
	a.inputs.SetReviewFlag(v)
}

// AddURL adds a URL. Validation failures are also pushed as notify:error.
func (a *App) AddURL(raw string) error {
	_, err := a.inputs.AddURL(a.ctx, raw)
	return err
}

// AddPendingURL adds the URL currently in the input field.
func (a *App) AddPendingURL() error {
	_, err := a.inputs.AddPendingURL(a.ctx)
	return err
}

// AddTextFile adds text and returns the generated file name.
func (a *App) AddTextFile(text string) string {
	return a.inputs.AddTextFile(a.ctx, text).Name
}

// AddPendingText adds the text area content and returns the generated file name.
func (a *App) AddPendingText() string {
	return a.inputs.AddPendingText(a.ctx).Name
}

// UploadFiles adds files dropped on the webview. Returns how many were new.
func (a *App) UploadFiles(inputs []UploadInput) (int, error) {
	files := make([]domain.VirtualFile, 0, len(inputs))
	for _, in := range inputs {
		content, err := base64.StdEncoding.DecodeString(in.Content)
		if err != nil {
			return 0, fmt.Errorf("decode %s: %w", in.Name, err)
		}
		if limit := a.cfg.Drop.MaxBytes; limit > 0 && int64(len(content)) > limit {
			a.log.Warn("upload too large", logger.String("name", in.Name), logger.Int("size", len(content)))
			continue
		}
		mimeType := in.MimeType
		if mimeType == "" {
			mimeType = mimetype.Detect(content).String()
		}
		files = append(files, domain.NewVirtualFile(in.Name, mimeType, content))
	}
	return a.inputs.DropFiles(a.ctx, files), nil
}

// PickFiles opens a native multi-file picker and adds the selection.
func (a *App) PickFiles() (int, error) {
	paths, err := wailsRuntime.OpenMultipleFilesDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Select Training Files",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Documents", Pattern: "*.pdf;*.docx;*.txt;*.md;*.html;*.csv;*.json"},
			{DisplayName: "All Files", Pattern: "*.*"},
		},
	})
	if err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, nil
	}
	return a.inputs.DropFiles(a.ctx, a.readFiles(paths)), nil
}

// ListFiles returns the rows of the file grid.
func (a *App) ListFiles() []domain.FileView {
	return a.inputs.FileViews()
}

// GetInputState returns the current session.
func (a *App) GetInputState() domain.InputState {
	return a.inputs.State()
}

// Finish submits the session with the given review choice.
func (a *App) Finish(manuallyReview bool) error {
	return a.inputs.Finish(a.ctx, manuallyReview)
}
