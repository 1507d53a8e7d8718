// Package pageviews tracks the browser page views that currently have a consent stream open.
package pageviews

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/carhire-site/consent"
	apperrors "github.com/jrsteele09/carhire-site/internal/errors"
	"github.com/jrsteele09/carhire-site/events"
)

var ErrViewNotFound = apperrors.ErrViewNotFound

// View is one open page: its event bus and the consent manager listening on it
type View struct {
	ID        string
	VisitorID string
	Bus       *events.Bus
	Manager   *consent.Manager
	OpenedAt  time.Time
}

// Registry maps view ids to live views
type Registry struct {
	mu    sync.RWMutex
	views map[string]*View
}

func NewRegistry() *Registry {
	return &Registry{views: make(map[string]*View)}
}

// NewViewID returns an id for a page about to be rendered
func NewViewID() string {
	return uuid.NewString()
}

// Add registers view and returns a func that removes it again.
// A view already registered under the same id is replaced.
func (r *Registry) Add(view *View) (remove func()) {
	r.mu.Lock()
	r.views[view.ID] = view
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.views[view.ID] == view {
				delete(r.views, view.ID)
			}
		})
	}
}

// Get returns the view for id. visitorID must match the visitor that opened it.
func (r *Registry) Get(id, visitorID string) (*View, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	view, ok := r.views[id]
	if !ok || view.VisitorID != visitorID {
		return nil, ErrViewNotFound
	}
	return view, nil
}

// Len returns the number of open views
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}
