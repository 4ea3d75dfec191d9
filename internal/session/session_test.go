package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/newapi-signin/internal/cookie"
	"github.com/oshokin/newapi-signin/internal/session"
	mock_session "github.com/oshokin/newapi-signin/internal/session/mocks"
)

func sampleSnapshot() *session.Snapshot {
	return &session.Snapshot{
		Cookies: []cookie.Cookie{
			{Name: "session", Value: "abc", Domain: "anyrouter.top", Path: "/", HTTPOnly: true},
			{Name: "user_session", Value: "gh", Domain: ".github.com", Path: "/", Secure: true},
		},
		Origins: []session.OriginStorage{{
			Origin:       "https://anyrouter.top",
			LocalStorage: []session.StorageItem{{Name: "user", Value: `{"id":42}`}},
		}},
	}
}

// TestKey tests cache key construction.
func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "alice_example_com_github", session.Key("alice@example.com", "github"))
	assert.Equal(t, "bob_linuxdo", session.Key("bob", "linuxdo"))
}

// TestSnapshotOrigins tests origin lookup and replacement.
func TestSnapshotOrigins(t *testing.T) {
	t.Parallel()

	var empty *session.Snapshot

	assert.True(t, empty.IsEmpty())
	assert.True(t, (&session.Snapshot{}).IsEmpty())

	snapshot := sampleSnapshot()
	assert.False(t, snapshot.IsEmpty())

	storage, ok := snapshot.Origin("https://anyrouter.top")
	require.True(t, ok)
	assert.Len(t, storage.LocalStorage, 1)

	_, ok = snapshot.Origin("https://github.com")
	assert.False(t, ok)

	snapshot.PutOrigin(session.OriginStorage{Origin: "https://anyrouter.top"})
	snapshot.PutOrigin(session.OriginStorage{Origin: "https://github.com"})

	require.Len(t, snapshot.Origins, 2)
	assert.Empty(t, snapshot.Origins[0].LocalStorage)
}

// TestFileStoreRoundTrip tests that a saved snapshot loads back unchanged.
func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")

	cache, err := session.NewCache(session.NewFileStore(dir))
	require.NoError(t, err)

	_, found, err := cache.Load(ctx, "alice_github")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Save(ctx, "alice_github", sampleSnapshot()))

	info, err := os.Stat(filepath.Join(dir, "alice_github.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A fresh cache has no memo and must read the file.
	reloaded, err := session.NewCache(session.NewFileStore(dir))
	require.NoError(t, err)

	snapshot, found, err := reloaded.Load(ctx, "alice_github")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sampleSnapshot(), snapshot)
}

// TestFileStoreOverwrite tests that the last save wins and only one file exists per key.
func TestFileStoreOverwrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	store := session.NewFileStore(dir)

	require.NoError(t, store.Put(ctx, "k", []byte("first")))
	require.NoError(t, store.Put(ctx, "k", []byte("second")))

	data, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = store.Get(ctx, "")
	require.ErrorIs(t, err, session.ErrEmptyKey)
}

// TestCacheCorruptedSnapshot tests that an unreadable blob is treated as absent.
func TestCacheCorruptedSnapshot(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mock_session.NewMockStore(ctrl)

	store.EXPECT().Get(gomock.Any(), "broken").Return([]byte("{not json"), nil)

	cache, err := session.NewCache(store)
	require.NoError(t, err)

	snapshot, found, err := cache.Load(context.Background(), "broken")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, snapshot)
}

// TestCacheStoreErrors tests error propagation and memo behavior.
func TestCacheStoreErrors(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mock_session.NewMockStore(ctrl)
	boom := errors.New("disk on fire")

	store.EXPECT().Get(gomock.Any(), "k").Return(nil, boom)
	store.EXPECT().Put(gomock.Any(), "k", gomock.Any()).Return(boom)
	store.EXPECT().Put(gomock.Any(), "k", gomock.Any()).Return(nil)

	cache, err := session.NewCache(store)
	require.NoError(t, err)

	_, _, err = cache.Load(context.Background(), "k")
	require.ErrorIs(t, err, boom)

	require.ErrorIs(t, cache.Save(context.Background(), "k", sampleSnapshot()), boom)
	require.NoError(t, cache.Save(context.Background(), "k", sampleSnapshot()))

	// Served from the memo: the store expects no further Get.
	snapshot, found, err := cache.Load(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, snapshot.Cookies, 2)
}

// TestRedisStore tests the Redis-backed store.
func TestRedisStore(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	store := session.NewRedisStore(db, "test:", time.Hour)
	ctx := context.Background()

	mock.ExpectGet("test:alice_github").RedisNil()
	mock.ExpectSet("test:alice_github", "payload", time.Hour).SetVal("OK")
	mock.ExpectGet("test:alice_github").SetVal("payload")
	mock.ExpectGet("test:broken").SetErr(errors.New("connection reset"))

	_, err := store.Get(ctx, "alice_github")
	require.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, store.Put(ctx, "alice_github", []byte("payload")))

	data, err := store.Get(ctx, "alice_github")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = store.Get(ctx, "broken")
	require.Error(t, err)
	require.NotErrorIs(t, err, session.ErrNotFound)

	require.ErrorIs(t, store.Put(ctx, "", nil), session.ErrEmptyKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestRedisStoreDefaultPrefix tests the default key namespace.
func TestRedisStoreDefaultPrefix(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	store := session.NewRedisStore(db, "", 0)

	mock.ExpectGet(session.DefaultRedisPrefix + "k").RedisNil()

	_, err := store.Get(context.Background(), "k")
	require.ErrorIs(t, err, session.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
