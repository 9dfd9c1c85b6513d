package domain

import "context"

// SettingTheme is the key of the persisted theme selection.
const SettingTheme = "theme"

// SettingsStore is a small persistent key/value store.
// Get returns "" with a nil error when the key is absent.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
