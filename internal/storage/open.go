package storage

import (
	"context"
	"fmt"
	"strings"

	"trainset/internal/config"
	"trainset/internal/domain"
	"trainset/internal/secret"
)

// SettingsBackend is a settings store the app can watch and close.
type SettingsBackend interface {
	domain.SettingsStore
	// Fingerprint changes whenever the stored settings change.
	Fingerprint(ctx context.Context) (string, error)
	Close() error
}

// SecretKey is the SecretStore key holding the password for driver.
func SecretKey(driver string) string {
	return "trainset:settings:" + driver
}

// OpenSettings opens the backend selected by cfg.Driver. When cfg.Password is
// empty the password is looked up in secrets (which may be nil).
func OpenSettings(ctx context.Context, cfg config.SettingsConfig, secrets secret.SecretStore) (SettingsBackend, error) {
	password := cfg.Password
	if password == "" && secrets != nil {
		if pw, err := secrets.Get(SecretKey(cfg.Driver)); err == nil && pw != nil {
			password = string(pw)
		}
	}

	switch cfg.Driver {
	case "", string(DialectSQLite):
		db, err := NewSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return NewSQLSettingsStore(db), nil
	case string(DialectPostgres):
		db, err := Open(DialectPostgres, buildPostgresDSN(cfg, password))
		if err != nil {
			return nil, err
		}
		return NewSQLSettingsStore(db), nil
	case string(DialectMySQL):
		db, err := Open(DialectMySQL, buildMySQLDSN(cfg, password))
		if err != nil {
			return nil, err
		}
		return NewSQLSettingsStore(db), nil
	case "mongo", "mongodb":
		return NewMongoSettingsStore(ctx, buildMongoURI(cfg, password), mongoDatabase(cfg))
	case "memory":
		return NewMemorySettingsStore(), nil
	default:
		return nil, fmt.Errorf("unsupported settings driver: %s", cfg.Driver)
	}
}

func buildPostgresDSN(cfg config.SettingsConfig, password string) string {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, port, cfg.Username, password, cfg.Database, sslMode,
	)
}

func buildMySQLDSN(cfg config.SettingsConfig, password string) string {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4",
		cfg.Username, password, cfg.Host, port, cfg.Database,
	)
	if cfg.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}

// buildMongoURI prefers an explicit URI and splices the password into a
// "user@" credential that lacks one.
func buildMongoURI(cfg config.SettingsConfig, password string) string {
	if cfg.URI != "" {
		uri := cfg.URI
		if password != "" && cfg.Username != "" && strings.Contains(uri, cfg.Username+"@") {
			uri = strings.Replace(uri, cfg.Username+"@", cfg.Username+":"+password+"@", 1)
		}
		return uri
	}
	port := cfg.Port
	if port == 0 {
		port = 27017
	}
	creds := ""
	if cfg.Username != "" {
		creds = cfg.Username
		if password != "" {
			creds += ":" + password
		}
		creds += "@"
	}
	return fmt.Sprintf("mongodb://%s%s:%d", creds, cfg.Host, port)
}

func mongoDatabase(cfg config.SettingsConfig) string {
	if cfg.Database != "" {
		return cfg.Database
	}
	return "trainset"
}
