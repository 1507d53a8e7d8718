package consent

import (
	apperrors "github.com/jrsteele09/carhire-site/internal/errors"
)

// StorageKey is the well known key the visitor's decision is kept under.
const StorageKey = "cookie-consent"

// Choice is the persisted consent decision.
type Choice string

const (
	Accepted Choice = "accepted"
	Rejected Choice = "rejected"
)

var (
	ErrNotFound           = apperrors.ErrNotFound
	ErrStorageUnavailable = apperrors.ErrStorageUnavailable
	ErrInvalidChoice      = apperrors.ErrInvalidChoice
)

func (c Choice) Valid() bool {
	return c == Accepted || c == Rejected
}

// ParseChoice validates a raw stored or submitted value
func ParseChoice(s string) (Choice, error) {
	c := Choice(s)
	if !c.Valid() {
		return "", apperrors.Wrapf(ErrInvalidChoice, "%q", s)
	}
	return c, nil
}
