// Package submissions keeps an audit of the cookie categories each visitor agreed to.
package submissions

import (
	"context"
	"time"

	"github.com/jrsteele09/carhire-site/consent"
)

// Submission is one visitor's category preferences. Necessary cookies are always on.
type Submission struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	IPAddress   string    `json:"ip_address,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	Necessary   bool      `json:"necessary_cookies"`
	Analytics   bool      `json:"analytics_cookies"`
	Marketing   bool      `json:"marketing_cookies"`
	Functional  bool      `json:"functional_cookies"`
	ConsentedAt time.Time `json:"consented_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// Choice maps the categories onto the banner decision: any optional category means accepted
func (s *Submission) Choice() consent.Choice {
	if s.Analytics || s.Marketing || s.Functional {
		return consent.Accepted
	}
	return consent.Rejected
}

// Repo stores submissions keyed by session id. Upsert keeps the original ConsentedAt
// of an existing row and refreshes its categories.
type Repo interface {
	Upsert(ctx context.Context, submission *Submission) (created bool, err error)
	Get(ctx context.Context, sessionID string) (*Submission, error)
	List(ctx context.Context, offset, limit int) ([]*Submission, error)
}

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now
