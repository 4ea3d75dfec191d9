package signin

//go:generate $MOCKGEN -source=cache.go -destination=mocks/cache_mock.go

import (
	"context"

	"github.com/oshokin/newapi-signin/internal/session"
)

// SnapshotCache persists sessions between sign-ins.
type SnapshotCache interface {
	// Load returns the snapshot stored for key; false means there is none.
	Load(ctx context.Context, key string) (*session.Snapshot, bool, error)
	// Save overwrites the snapshot stored for key.
	Save(ctx context.Context, key string, snapshot *session.Snapshot) error
}
