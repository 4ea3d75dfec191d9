package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/oshokin/newapi-signin/internal/logger"
)

// defaultMemoSize bounds the in-process snapshot memo.
const defaultMemoSize = 64

// Cache loads and saves snapshots through a Store.
// Decoded snapshots are memoized so a run touching the same key twice reads storage once.
type Cache struct {
	store Store
	memo  *lru.Cache[string, *Snapshot]
}

// NewCache creates a cache over store.
func NewCache(store Store) (*Cache, error) {
	memo, err := lru.New[string, *Snapshot](defaultMemoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot memo: %w", err)
	}

	return &Cache{store: store, memo: memo}, nil
}

// Load returns the snapshot for key.
// A missing or unreadable blob reports false with no error: both lead to a fresh login.
func (c *Cache) Load(ctx context.Context, key string) (*Snapshot, bool, error) {
	if snapshot, ok := c.memo.Get(key); ok {
		return snapshot, true, nil
	}

	data, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	var snapshot Snapshot
	if err = json.Unmarshal(data, &snapshot); err != nil {
		logger.Warnf(ctx, "Ignoring corrupted session snapshot %s: %v", key, err)

		return nil, false, nil
	}

	c.memo.Add(key, &snapshot)

	return &snapshot, true, nil
}

// Save overwrites the snapshot stored for key.
func (c *Cache) Save(ctx context.Context, key string, snapshot *Snapshot) error {
	if snapshot == nil {
		snapshot = &Snapshot{}
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session snapshot: %w", err)
	}

	if err = c.store.Put(ctx, key, data); err != nil {
		c.memo.Remove(key)

		return err
	}

	c.memo.Add(key, snapshot)

	logger.Debugf(ctx, "Saved session snapshot %s (%d cookies)", key, len(snapshot.Cookies))

	return nil
}
