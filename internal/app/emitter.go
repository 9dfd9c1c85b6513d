package app

import (
	"context"
	"fmt"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"trainset/internal/domain"
	"trainset/internal/logger"
)

// wailsEmitter forwards service events to the webview. EventsEmit needs the
// Wails context, so the one captured at startup is used for every event.
type wailsEmitter struct {
	ctx context.Context
}

func (e wailsEmitter) Emit(_ context.Context, event string, data any) {
	wailsRuntime.EventsEmit(e.ctx, event, data)
}

// logEmitter is used in MCP-only mode (no Wails frontend).
type logEmitter struct {
	log logger.Logger
}

func (e logEmitter) Emit(_ context.Context, event string, data any) {
	e.log.Debug("event", logger.String("event", event), logger.String("data", fmt.Sprintf("%+v", summarize(data))))
}

// summarize keeps file contents out of the log.
func summarize(data any) any {
	if c, ok := data.(domain.InputsChanged); ok {
		names := make([]string, len(c.Files))
		for i, f := range c.Files {
			names[i] = f.Name
		}
		return struct {
			Counter int
			Files   []string
		}{c.Counter, names}
	}
	return data
}
