package token

import (
	"sync"
	"time"
)

// RevokedTokenCache lists admin access tokens that were logged out before their exp.
// Entries are keyed by the token's jti and only need to outlive the token itself.
type RevokedTokenCache interface {
	Add(jti string, exp time.Time) error
	IsRevoked(jti string) bool
	// Cleanup forgets tokens past their exp and reports how many went
	Cleanup() int
}

type RevocationOption func(*InMemoryRevokedTokenCache)

// WithRevocationClock replaces time.Now when sweeping
func WithRevocationClock(now func() time.Time) RevocationOption {
	return func(c *InMemoryRevokedTokenCache) {
		c.now = now
	}
}

// InMemoryRevokedTokenCache is local to one server process. A logout on one
// instance does not reach cookies presented to another.
type InMemoryRevokedTokenCache struct {
	mu      sync.RWMutex
	expires map[string]time.Time // jti to the token's exp
	now     func() time.Time
}

var _ RevokedTokenCache = (*InMemoryRevokedTokenCache)(nil)

func NewInMemoryRevokedTokenCache(opts ...RevocationOption) *InMemoryRevokedTokenCache {
	c := &InMemoryRevokedTokenCache{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add revokes jti. Tokens minted without a jti cannot be revoked and are ignored.
// Revoking the same jti again keeps the later exp.
func (c *InMemoryRevokedTokenCache) Add(jti string, exp time.Time) error {
	if jti == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.expires[jti]; !ok || exp.After(current) {
		c.expires[jti] = exp
	}
	return nil
}

func (c *InMemoryRevokedTokenCache) IsRevoked(jti string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, revoked := c.expires[jti]
	return revoked
}

func (c *InMemoryRevokedTokenCache) Cleanup() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for jti, exp := range c.expires {
		if now.After(exp) {
			delete(c.expires, jti)
			removed++
		}
	}
	return removed
}

// Len is the number of revocations still held
func (c *InMemoryRevokedTokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.expires)
}
