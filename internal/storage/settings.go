package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLSettingsStore implements domain.SettingsStore on the app_settings table.
type SQLSettingsStore struct {
	db  *DB
	now func() time.Time
}

// NewSQLSettingsStore creates a settings store over db.
func NewSQLSettingsStore(db *DB) *SQLSettingsStore {
	return &SQLSettingsStore{db: db, now: time.Now}
}

func (s *SQLSettingsStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.Conn().QueryRowContext(ctx,
		s.db.bind(`SELECT setting_value FROM app_settings WHERE setting_key = ?`), key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLSettingsStore) Set(ctx context.Context, key, value string) error {
	var q string
	switch s.db.Dialect() {
	case DialectMySQL:
		q = `INSERT INTO app_settings (setting_key, setting_value, updated_at) VALUES (?, ?, ?)
			 ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value), updated_at = VALUES(updated_at)`
	default:
		q = `INSERT INTO app_settings (setting_key, setting_value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(setting_key) DO UPDATE SET setting_value = excluded.setting_value, updated_at = excluded.updated_at`
	}
	if _, err := s.db.Conn().ExecContext(ctx, s.db.bind(q), key, value, s.now().UnixNano()); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func (s *SQLSettingsStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.Conn().ExecContext(ctx,
		s.db.bind(`DELETE FROM app_settings WHERE setting_key = ?`), key,
	); err != nil {
		return fmt.Errorf("remove setting %s: %w", key, err)
	}
	return nil
}

// Fingerprint changes whenever any setting is written or removed.
func (s *SQLSettingsStore) Fingerprint(ctx context.Context) (string, error) {
	var count, updated int64
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(updated_at), 0) FROM app_settings`,
	).Scan(&count, &updated)
	if err != nil {
		return "", fmt.Errorf("settings fingerprint: %w", err)
	}
	return fmt.Sprintf("%d:%d", count, updated), nil
}

// Close closes the underlying database.
func (s *SQLSettingsStore) Close() error {
	return s.db.Close()
}
