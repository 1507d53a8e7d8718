package jwt

import (
	"time"

	"github.com/jrsteele09/carhire-site/token"
)

// DefaultExpiryBuffer treats tokens as expired slightly early to absorb clock
// skew between issuer and checker and request latency.
const DefaultExpiryBuffer = 5 * time.Second

type CheckerOption func(*Checker)

func WithExpiryBuffer(d time.Duration) CheckerOption {
	return func(c *Checker) {
		if d >= 0 {
			c.buffer = d
		}
	}
}

// WithClock overrides NowTimeFunc for this checker
func WithClock(now func() time.Time) CheckerOption {
	return func(c *Checker) {
		c.now = now
	}
}

// Checker decides whether a bearer token is still usable without verifying its
// signature or calling the issuer. Anything it cannot read counts as expired.
type Checker struct {
	tokens token.Store
	buffer time.Duration
	now    func() time.Time
}

// NewChecker creates a checker reading the current token from tokens (which may be nil)
func NewChecker(tokens token.Store, opts ...CheckerOption) *Checker {
	c := &Checker{
		tokens: tokens,
		buffer: DefaultExpiryBuffer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Checker) currentTime() time.Time {
	if c.now != nil {
		return c.now()
	}
	return NowTimeFunc()
}

// IsExpired is true for an empty or undecodable token, a token without a numeric
// exp claim, and once now reaches exp minus the buffer.
func (c *Checker) IsExpired(rawToken string) bool {
	if rawToken == "" {
		return true
	}
	exp, ok := ExpiryOf(DecodeClaims(rawToken))
	if !ok {
		return true
	}
	return !c.currentTime().Before(exp.Add(-c.buffer))
}

// IsCurrentTokenValid checks the token held by the store
func (c *Checker) IsCurrentTokenValid() bool {
	if c.tokens == nil {
		return false
	}
	rawToken, ok := c.tokens.GetAccessToken()
	if !ok || rawToken == "" {
		return false
	}
	return !c.IsExpired(rawToken)
}

// TimeRemaining is the time left until exp, ignoring the buffer. Never negative.
func (c *Checker) TimeRemaining(rawToken string) time.Duration {
	if rawToken == "" {
		return 0
	}
	exp, ok := ExpiryOf(DecodeClaims(rawToken))
	if !ok {
		return 0
	}
	remaining := exp.Sub(c.currentTime())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// WithStore returns a copy of the checker reading from a different store,
// e.g. one scoped to a single request.
func (c *Checker) WithStore(tokens token.Store) *Checker {
	cp := *c
	cp.tokens = tokens
	return &cp
}
