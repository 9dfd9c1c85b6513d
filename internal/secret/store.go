package secret

import (
	"os"
	"strings"
)

// SecretStore keeps sensitive values such as settings-database passwords out
// of the config file.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// EnvStore reads secrets from environment variables. The key
// "trainset:settings:postgres" maps to TRAINSET_SETTINGS_POSTGRES_SECRET.
type EnvStore struct{}

func envName(key string) string {
	r := strings.NewReplacer(":", "_", "-", "_", ".", "_")
	return strings.ToUpper(r.Replace(key)) + "_SECRET"
}

func (EnvStore) Set(key string, value []byte) error { return os.Setenv(envName(key), string(value)) }
func (EnvStore) Delete(key string) error            { return os.Unsetenv(envName(key)) }

func (EnvStore) Get(key string) ([]byte, error) {
	if v, ok := os.LookupEnv(envName(key)); ok {
		return []byte(v), nil
	}
	return nil, nil
}

// Chain reads from each store in order and returns the first hit.
// Writes go to the first store.
type Chain []SecretStore

func (c Chain) Get(key string) ([]byte, error) {
	for _, s := range c {
		v, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if len(v) > 0 {
			return v, nil
		}
	}
	return nil, nil
}

func (c Chain) Set(key string, value []byte) error {
	if len(c) == 0 {
		return nil
	}
	return c[0].Set(key, value)
}

func (c Chain) Delete(key string) error {
	for _, s := range c {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Default returns env vars first, then the macOS Keychain.
func Default() SecretStore {
	return Chain{EnvStore{}, NewKeychainStore()}
}
