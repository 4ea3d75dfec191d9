package session

//go:generate $MOCKGEN -source=store.go -destination=mocks/store_mock.go

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when no blob exists for the key.
var ErrNotFound = errors.New("session snapshot not found")

// ErrEmptyKey is returned for an empty cache key.
var ErrEmptyKey = errors.New("empty session key")

// Store keeps serialized snapshots by key.
type Store interface {
	// Get returns the blob stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put overwrites the blob stored under key.
	Put(ctx context.Context, key string, data []byte) error
}
