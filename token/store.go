package token

import (
	"strings"
	"sync"

	"golang.org/x/oauth2"
)

// Store is the token-storage collaborator: it hands out the current access token, if any.
// Readers never write through it.
type Store interface {
	GetAccessToken() (string, bool)
}

// MemoryStore holds a single access token in memory
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (s *MemoryStore) GetAccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *MemoryStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemoryStore) Clear() {
	s.Set("")
}

// FromTokenSource adapts an oauth2.TokenSource. A source error reads as "no token".
func FromTokenSource(ts oauth2.TokenSource) Store {
	return tokenSourceStore{ts: ts}
}

type tokenSourceStore struct {
	ts oauth2.TokenSource
}

func (s tokenSourceStore) GetAccessToken() (string, bool) {
	if s.ts == nil {
		return "", false
	}
	t, err := s.ts.Token()
	if err != nil || t == nil || t.AccessToken == "" {
		return "", false
	}
	return t.AccessToken, true
}

// FromAuthorizationHeader extracts the token from a "Bearer <token>" header value
func FromAuthorizationHeader(header string) Store {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return NewMemoryStore("")
	}
	return NewMemoryStore(strings.TrimSpace(parts[1]))
}
