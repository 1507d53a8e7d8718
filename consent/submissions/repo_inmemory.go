package submissions

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/carhire-site/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu          sync.RWMutex
	submissions map[string]*Submission
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		submissions: make(map[string]*Submission),
	}
}

func (r *InMemoryRepo) Upsert(_ context.Context, submission *Submission) (bool, error) {
	if submission == nil {
		return false, errors.New("submission cannot be nil")
	}
	if submission.SessionID == "" {
		return false, errors.New("session id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := NowTimeFunc()
	existing, ok := r.submissions[submission.SessionID]
	if ok {
		existing.Analytics = submission.Analytics
		existing.Marketing = submission.Marketing
		existing.Functional = submission.Functional
		existing.LastUpdated = now
		return false, nil
	}

	// Store a copy to prevent external modifications
	stored := *submission
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.Necessary = true
	stored.ConsentedAt = now
	stored.LastUpdated = now
	r.submissions[stored.SessionID] = &stored
	return true, nil
}

func (r *InMemoryRepo) Get(_ context.Context, sessionID string) (*Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.submissions[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (r *InMemoryRepo) List(_ context.Context, offset, limit int) ([]*Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Submission, 0, len(r.submissions))
	for _, s := range r.submissions {
		c := *s
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ConsentedAt.After(all[j].ConsentedAt)
	})

	if offset < 0 || offset >= len(all) {
		return []*Submission{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}
