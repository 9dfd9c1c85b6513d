package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"trainset/internal/domain"
	"trainset/internal/logger"
	"trainset/internal/theme"
)

// ErrUnknownTheme is returned when an explicit selection names no registered theme.
var ErrUnknownTheme = errors.New("unknown theme")

// ThemeChanged is the payload of EventThemeChanged.
type ThemeChanged struct {
	Name string `json:"name"`
}

// ActiveTheme is what the frontend needs to paint itself.
type ActiveTheme struct {
	Name   string       `json:"name"`
	Config theme.Config `json:"config"`
	Logo   string       `json:"logo"`
}

// ThemeService resolves and persists the branding theme.
type ThemeService struct {
	store    domain.SettingsStore
	resolver *theme.Resolver
	emitter  EventEmitter
	log      logger.Logger

	mu      sync.Mutex
	onWrite func()
}

func NewThemeService(store domain.SettingsStore, emitter EventEmitter, log logger.Logger) *ThemeService {
	s := &ThemeService{emitter: emitter, log: log}
	// resolver writes (query persists, stale-name heals) go through the
	// same wrapper so every in-process write reaches the hook
	s.store = writeNotifier{SettingsStore: store, notify: s.wrote}
	s.resolver = theme.NewResolver(s.store, log)
	return s
}

// OnStoreWrite registers fn to run after every successful write this
// service makes to the settings store.
func (s *ThemeService) OnStoreWrite(fn func()) {
	s.mu.Lock()
	s.onWrite = fn
	s.mu.Unlock()
}

func (s *ThemeService) wrote() {
	s.mu.Lock()
	fn := s.onWrite
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// writeNotifier calls notify after each successful Set or Remove.
type writeNotifier struct {
	domain.SettingsStore
	notify func()
}

func (w writeNotifier) Set(ctx context.Context, key, value string) error {
	if err := w.SettingsStore.Set(ctx, key, value); err != nil {
		return err
	}
	w.notify()
	return nil
}

func (w writeNotifier) Remove(ctx context.Context, key string) error {
	if err := w.SettingsStore.Remove(ctx, key); err != nil {
		return err
	}
	w.notify()
	return nil
}

// ResolveName returns the active theme name for env.
func (s *ThemeService) ResolveName(ctx context.Context, env theme.Env) string {
	return s.resolver.ResolveName(ctx, env)
}

// Active resolves the theme and looks it up. A query override naming an
// unregistered theme is honoured by name but painted with the default.
func (s *ThemeService) Active(ctx context.Context, env theme.Env) ActiveTheme {
	name := s.resolver.ResolveName(ctx, env)
	cfg, ok := theme.Lookup(name)
	if !ok {
		s.log.Debug("resolved theme not registered, painting default", logger.String("theme", name))
		cfg, _ = theme.Lookup(theme.DefaultName)
	}
	active := ActiveTheme{Name: name, Config: cfg}
	if logo, err := cfg.RenderLogo(); err != nil {
		s.log.Error("render logo", logger.String("theme", name), logger.Error(err))
	} else {
		active.Logo = string(logo)
	}
	return active
}

// Stylesheet returns the active theme's CSS variables for mode.
func (s *ThemeService) Stylesheet(ctx context.Context, env theme.Env, mode theme.Mode) string {
	return s.Active(ctx, env).Config.CSSVariables(mode)
}

// SetTheme persists an explicit selection. Unlike the query override it
// must name a registered theme.
func (s *ThemeService) SetTheme(ctx context.Context, name string) error {
	if !theme.Known(name) {
		return fmt.Errorf("set theme %q: %w", name, ErrUnknownTheme)
	}
	if err := s.store.Set(ctx, domain.SettingTheme, name); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	s.log.Info("theme selected", logger.String("theme", name))
	s.emitter.Emit(ctx, EventThemeChanged, ThemeChanged{Name: name})
	return nil
}

// ClearTheme removes the persisted selection.
func (s *ThemeService) ClearTheme(ctx context.Context) error {
	if err := s.store.Remove(ctx, domain.SettingTheme); err != nil {
		return fmt.Errorf("clear theme: %w", err)
	}
	s.emitter.Emit(ctx, EventThemeChanged, ThemeChanged{Name: s.resolver.ResolveName(ctx, theme.Env{})})
	return nil
}

// Announce pushes the theme currently resolved for env to the frontend.
func (s *ThemeService) Announce(ctx context.Context, env theme.Env) {
	s.emitter.Emit(ctx, EventThemeChanged, ThemeChanged{Name: s.resolver.ResolveName(ctx, env)})
}
