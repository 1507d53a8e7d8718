// Package redisstore keeps consent records in Redis so every server instance
// sees the same decision for a visitor.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/carhire-site/consent"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "consent:"

var _ consent.Storage = (*Store)(nil)

// Store is a consent.Storage backed by redis. Records are written without expiry.
type Store struct {
	client redis.UniversalClient
}

func New(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Connect parses a redis:// URL, pings the server and returns a store over the new client.
func Connect(ctx context.Context, url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return New(client), nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", consent.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", consent.ErrStorageUnavailable, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %w", consent.ErrStorageUnavailable, err)
	}
	return nil
}

// Ping checks the connection is healthy
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
