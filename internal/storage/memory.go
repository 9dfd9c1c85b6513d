package storage

import (
	"context"
	"strconv"
	"sync"
)

// MemorySettingsStore keeps settings in process memory. Nothing survives a
// restart; it backs tests and the "memory" driver.
type MemorySettingsStore struct {
	mu      sync.Mutex
	values  map[string]string
	version int
}

func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{values: make(map[string]string)}
}

func (s *MemorySettingsStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

func (s *MemorySettingsStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.version++
	return nil
}

func (s *MemorySettingsStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.version++
	}
	return nil
}

func (s *MemorySettingsStore) Fingerprint(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strconv.Itoa(s.version), nil
}

func (s *MemorySettingsStore) Close() error { return nil }
