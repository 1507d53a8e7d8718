// Package authflowrepo holds the in-flight state of admin single sign-on
// between the redirect to the identity provider and its callback.
package authflowrepo

import (
	"errors"
	"time"
)

var ErrStateNotFound = errors.New("auth flow state not found")

type AuthFlowState struct {
	CodeVerifier string
	Nonce        string
	ReturnURL    string
	CreatedAt    time.Time
}

// Expired reports whether the flow is older than maxAge at now
func (a *AuthFlowState) Expired(now time.Time, maxAge time.Duration) bool {
	return now.Sub(a.CreatedAt) > maxAge
}

type Repo interface {
	Upsert(state string, authState *AuthFlowState) error
	// Take returns the flow for state and removes it, so a state can only be used once
	Take(state string) (*AuthFlowState, error)
	Delete(state string) error
	// Prune removes flows created before cutoff and returns how many went
	Prune(cutoff time.Time) int
}
