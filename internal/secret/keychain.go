package secret

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

const keychainService = "trainset"

// exit status of `security` when the item does not exist
const keychainNotFound = 44

// KeychainStore implements SecretStore with the macOS Keychain through the
// `security` CLI. On other platforms reads miss and writes fail.
type KeychainStore struct {
	service string
}

func NewKeychainStore() *KeychainStore {
	return &KeychainStore{service: keychainService}
}

func (k *KeychainStore) available() bool {
	return runtime.GOOS == "darwin"
}

// Set stores a secret, replacing any existing value.
func (k *KeychainStore) Set(key string, value []byte) error {
	if !k.available() {
		return fmt.Errorf("keychain set: not supported on %s", runtime.GOOS)
	}
	cmd := exec.Command("security", "add-generic-password",
		"-a", key,
		"-s", k.service,
		"-w", string(value),
		"-U",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("keychain set: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Get returns nil, nil when the item is missing.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	if !k.available() {
		return nil, nil
	}
	out, err := exec.Command("security", "find-generic-password",
		"-a", key,
		"-s", k.service,
		"-w",
	).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == keychainNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("keychain get: %w", err)
	}
	return []byte(strings.TrimSpace(string(out))), nil
}

// Delete ignores missing items.
func (k *KeychainStore) Delete(key string) error {
	if !k.available() {
		return nil
	}
	_ = exec.Command("security", "delete-generic-password",
		"-a", key,
		"-s", k.service,
	).Run()
	return nil
}
