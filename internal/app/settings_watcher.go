package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"trainset/internal/config"
	"trainset/internal/logger"
	"trainset/internal/storage"
)

// settingsWatcher polls the settings store for changes made outside this
// process (e.g. the standalone MCP server selecting a theme) so the
// frontend can repaint.
type settingsWatcher struct {
	ctx      context.Context
	backend  storage.SettingsBackend
	onChange func()
	log      logger.Logger
	cron     *cron.Cron

	mu   sync.Mutex
	last string // fingerprint seen on the previous poll
}

func newSettingsWatcher(ctx context.Context, backend storage.SettingsBackend, schedule string, log logger.Logger, onChange func()) (*settingsWatcher, error) {
	if schedule == "" {
		schedule = config.DefaultWatchSchedule
	}
	w := &settingsWatcher{
		ctx:      ctx,
		backend:  backend,
		onChange: onChange,
		log:      log.With(logger.String("component", "settings-watcher")),
		cron:     cron.New(),
	}
	if _, err := w.cron.AddFunc(schedule, w.check); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", schedule, err)
	}
	return w, nil
}

// Start begins polling. The first poll only records the fingerprint.
func (w *settingsWatcher) Start() {
	w.cron.Start()
}

// Stop waits for a running poll to finish.
func (w *settingsWatcher) Stop() {
	<-w.cron.Stop().Done()
}

func (w *settingsWatcher) check() {
	if w.ctx.Err() != nil {
		return
	}
	fp, err := w.backend.Fingerprint(w.ctx)
	if err != nil {
		w.log.Warn("fingerprint settings", logger.Error(err))
		return
	}

	w.mu.Lock()
	changed := w.last != "" && w.last != fp
	w.last = fp
	w.mu.Unlock()

	if changed {
		w.log.Debug("settings changed externally", logger.String("fingerprint", fp))
		w.onChange()
	}
}

// Rebase records the current fingerprint without firing. In-process writers
// call it so only changes made by other processes reach onChange.
func (w *settingsWatcher) Rebase() {
	fp, err := w.backend.Fingerprint(w.ctx)
	if err != nil {
		w.log.Warn("fingerprint settings", logger.Error(err))
		return
	}
	w.mu.Lock()
	w.last = fp
	w.mu.Unlock()
}
