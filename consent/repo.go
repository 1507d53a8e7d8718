package consent

import (
	"context"
	"errors"
)

// Storage is the durable key-value store the consent record lives in.
// Get returns ErrNotFound when the key has never been written.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Namespaced prefixes every key so one backing store can hold a record per visitor.
func Namespaced(storage Storage, prefix string) Storage {
	if storage == nil {
		return nil
	}
	return namespacedStorage{storage: storage, prefix: prefix}
}

type namespacedStorage struct {
	storage Storage
	prefix  string
}

func (n namespacedStorage) Get(ctx context.Context, key string) (string, error) {
	return n.storage.Get(ctx, n.prefix+key)
}

func (n namespacedStorage) Set(ctx context.Context, key, value string) error {
	return n.storage.Set(ctx, n.prefix+key, value)
}

// VisitorPrefix is the key prefix used for a visitor's records
func VisitorPrefix(visitorID string) string {
	return "visitor:" + visitorID + ":"
}

// Load reads the stored choice. ok is false when no decision has been made.
// Any stored value counts as a decision, even one that is not a known Choice.
func Load(ctx context.Context, storage Storage) (choice Choice, ok bool, err error) {
	if storage == nil {
		return "", false, ErrStorageUnavailable
	}
	value, err := storage.Get(ctx, StorageKey)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return Choice(value), true, nil
}
