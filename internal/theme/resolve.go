package theme

import (
	"context"
	"fmt"
	"net/url"

	"trainset/internal/domain"
	"trainset/internal/logger"
)

// QueryParam is the URL query parameter that overrides the theme.
const QueryParam = "theme"

// Env is the environment a resolution runs in. A nil Document means there is
// no browser document: the query override and host mapping are skipped.
type Env struct {
	Document *url.URL
}

// EnvFromURL parses a document URL. An empty string yields a document-less Env.
func EnvFromURL(raw string) (Env, error) {
	if raw == "" {
		return Env{}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Env{}, fmt.Errorf("parse document url: %w", err)
	}
	return Env{Document: u}, nil
}

// EnvForHost returns an Env whose document lives on host, with no query.
func EnvForHost(host string) Env {
	if host == "" {
		return Env{}
	}
	return Env{Document: &url.URL{Scheme: "https", Host: host, Path: "/"}}
}

// Resolver picks the active theme name.
type Resolver struct {
	store   domain.SettingsStore
	domains map[string]string
	log     logger.Logger
}

// NewResolver creates a Resolver over the persisted settings store.
func NewResolver(store domain.SettingsStore, log logger.Logger) *Resolver {
	return &Resolver{store: store, domains: domains, log: log}
}

// ResolveName returns the active theme name. Precedence:
//
//  1. a non-empty ?theme= query value is persisted and returned as is, known or not
//     (the store is only written when the value differs from the persisted one);
//  2. a persisted value is returned if it names a registered theme, otherwise it
//     is removed and the default is returned;
//  3. the document host's mapped theme, if registered;
//  4. DefaultName.
//
// Store failures are logged and treated as "no value".
func (r *Resolver) ResolveName(ctx context.Context, env Env) string {
	if env.Document != nil {
		if q := env.Document.Query().Get(QueryParam); q != "" {
			r.persist(ctx, q)
			return q
		}
	}

	stored, err := r.store.Get(ctx, domain.SettingTheme)
	if err != nil {
		r.log.Warn("read persisted theme", logger.Error(err))
		stored = ""
	}
	if stored != "" {
		if Known(stored) {
			return stored
		}
		r.log.Info("clearing unknown persisted theme", logger.String("theme", stored))
		if err := r.store.Remove(ctx, domain.SettingTheme); err != nil {
			r.log.Warn("remove persisted theme", logger.Error(err))
		}
		return DefaultName
	}

	if env.Document != nil {
		if name, ok := r.domains[env.Document.Hostname()]; ok && Known(name) {
			return name
		}
	}
	return DefaultName
}

// persist stores name unless it is already the persisted value, so reloading
// a page that carries ?theme= does not rewrite the store every time.
func (r *Resolver) persist(ctx context.Context, name string) {
	stored, err := r.store.Get(ctx, domain.SettingTheme)
	if err != nil {
		r.log.Warn("read persisted theme", logger.Error(err))
	} else if stored == name {
		return
	}
	if err := r.store.Set(ctx, domain.SettingTheme, name); err != nil {
		r.log.Warn("persist theme override", logger.String("theme", name), logger.Error(err))
	}
}
