package repofakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/carhire-site/consent"
)

var _ consent.Storage = (*FakeStorage)(nil)

// FakeStorage is an in-memory consent.Storage. It also backs the server when no redis is configured.
type FakeStorage struct {
	values      map[string]string
	unavailable bool
	lock        sync.RWMutex
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		values: make(map[string]string),
	}
}

// SetUnavailable makes every call fail as if the backend were down
func (s *FakeStorage) SetUnavailable(unavailable bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.unavailable = unavailable
}

func (s *FakeStorage) Get(_ context.Context, key string) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.unavailable {
		return "", consent.ErrStorageUnavailable
	}
	v, ok := s.values[key]
	if !ok {
		return "", consent.ErrNotFound
	}
	return v, nil
}

func (s *FakeStorage) Set(_ context.Context, key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.unavailable {
		return consent.ErrStorageUnavailable
	}
	s.values[key] = value
	return nil
}

// Ping reports whether the store is reachable
func (s *FakeStorage) Ping(_ context.Context) error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.unavailable {
		return consent.ErrStorageUnavailable
	}
	return nil
}

// Len returns how many keys are stored
func (s *FakeStorage) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.values)
}
