package app

import (
	"context"
	"fmt"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"trainset/internal/config"
	"trainset/internal/domain"
	"trainset/internal/dropzone"
	"trainset/internal/logger"
	"trainset/internal/secret"
	"trainset/internal/service"
	"trainset/internal/storage"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context
	cfg *config.Config
	log logger.Logger

	settings storage.SettingsBackend
	inputs   *service.InputService
	themes   *service.ThemeService
	drop     *dropzone.Zone
	watcher  *settingsWatcher
}

// New creates a new App.
func New(cfg *config.Config, log logger.Logger) *App {
	return &App{cfg: cfg, log: log}
}

// services is what the desktop and MCP modes share.
type services struct {
	settings storage.SettingsBackend
	inputs   *service.InputService
	themes   *service.ThemeService
}

func openServices(ctx context.Context, cfg *config.Config, log logger.Logger, emitter service.EventEmitter) (*services, error) {
	settings, err := storage.OpenSettings(ctx, cfg.Settings, secret.Default())
	if err != nil {
		return nil, fmt.Errorf("open settings (%s): %w", cfg.Settings.Driver, err)
	}
	return &services{
		settings: settings,
		inputs:   service.NewInputService(emitter, log.With(logger.String("service", "inputs"))),
		themes:   service.NewThemeService(settings, emitter, log.With(logger.String("service", "theme"))),
	}, nil
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	svc, err := openServices(ctx, a.cfg, a.log, wailsEmitter{ctx: ctx})
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open settings store: %v", err)
		return
	}
	a.settings = svc.settings
	a.inputs = svc.inputs
	a.themes = svc.themes

	a.inputs.Start(ctx, domain.InputSeed{ShowButton: true})

	// Drop folder: anything written into it joins the current session
	if !a.cfg.Drop.Disabled {
		zone, err := dropzone.New(dropzone.Options{
			Dir:      a.cfg.Drop.Dir,
			MaxBytes: a.cfg.Drop.MaxBytes,
		}, func(files []domain.VirtualFile) {
			a.inputs.DropFiles(ctx, files)
		}, a.log)
		if err != nil {
			a.log.Error("drop folder unavailable", logger.Error(err))
		}
		a.drop = zone
	}

	// Files dropped onto the window
	wailsRuntime.OnFileDrop(ctx, func(_, _ int, paths []string) {
		a.inputs.DropFiles(ctx, a.readFiles(paths))
	})

	watcher, err := a.watchSettings(ctx)
	if err != nil {
		a.log.Error("settings watcher unavailable", logger.Error(err))
	} else {
		watcher.Start()
		a.watcher = watcher
	}
}

// watchSettings builds the watcher that repaints on theme changes made by
// another process (e.g. MCP mode) on the same store. Writes made by this
// process move its baseline instead of firing it.
func (a *App) watchSettings(ctx context.Context) (*settingsWatcher, error) {
	watcher, err := newSettingsWatcher(ctx, a.settings, a.cfg.Settings.WatchSchedule, a.log, func() {
		a.themes.Announce(ctx, a.hostEnv())
	})
	if err != nil {
		return nil, err
	}
	a.themes.OnStoreWrite(watcher.Rebase)
	return watcher, nil
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.drop != nil {
		a.drop.Close()
	}
	if a.settings != nil {
		a.settings.Close()
	}
	a.log.Sync()
}

// readFiles loads paths through the drop zone when it runs, so the size
// limit applies the same way to every drop path.
func (a *App) readFiles(paths []string) []domain.VirtualFile {
	if a.drop != nil {
		return a.drop.Ingest(paths)
	}
	return fileReader{maxBytes: a.cfg.Drop.MaxBytes, log: a.log}.Ingest(paths)
}
