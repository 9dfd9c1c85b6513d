package app

import (
	"trainset/internal/service"
	"trainset/internal/theme"
)

// ============================================================
// Theme
// ============================================================

// hostEnv is used when the frontend has no document URL to offer.
func (a *App) hostEnv() theme.Env {
	return theme.EnvForHost(a.cfg.Theme.Host)
}

func (a *App) envFor(documentURL string) (theme.Env, error) {
	if documentURL == "" {
		return a.hostEnv(), nil
	}
	return theme.EnvFromURL(documentURL)
}

// ResolveTheme returns the active theme name for the page at documentURL.
func (a *App) ResolveTheme(documentURL string) (string, error) {
	env, err := a.envFor(documentURL)
	if err != nil {
		return "", err
	}
	return a.themes.ResolveName(a.ctx, env), nil
}

// GetThemeConfig returns the active theme with its config and logo markup.
func (a *App) GetThemeConfig(documentURL string) (service.ActiveTheme, error) {
	env, err := a.envFor(documentURL)
	if err != nil {
		return service.ActiveTheme{}, err
	}
	return a.themes.Active(a.ctx, env), nil
}

// GetThemeCSS returns the active theme's CSS variables for mode ("light" or "dark").
func (a *App) GetThemeCSS(documentURL, mode string) (string, error) {
	env, err := a.envFor(documentURL)
	if err != nil {
		return "", err
	}
	return a.themes.Stylesheet(a.ctx, env, theme.ParseMode(mode)), nil
}

// ListThemes returns the registered theme names.
func (a *App) ListThemes() []string {
	return theme.Names()
}

// SetTheme persists a theme selection.
func (a *App) SetTheme(name string) error {
	return a.themes.SetTheme(a.ctx, name)
}

// ClearTheme forgets the persisted theme selection.
func (a *App) ClearTheme() error {
	return a.themes.ClearTheme(a.ctx)
}
