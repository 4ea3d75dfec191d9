package signin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/newapi-signin/internal/cookie"
	"github.com/oshokin/newapi-signin/internal/session"
)

// TestPollUntil tests the shared polling primitive.
func TestPollUntil(t *testing.T) {
	t.Parallel()

	t.Run("immediate", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := pollUntil(context.Background(), time.Second, time.Hour, func(context.Context) (bool, error) {
			calls++

			return true, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("eventually", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := pollUntil(context.Background(), time.Second, time.Millisecond, func(context.Context) (bool, error) {
			calls++
			if calls < 3 {
				return false, errors.New("not yet")
			}

			return true, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		started := time.Now()
		err := pollUntil(context.Background(), 20*time.Millisecond, time.Millisecond, func(context.Context) (bool, error) {
			return false, nil
		})

		require.ErrorIs(t, err, errWaitTimeout)
		assert.Less(t, time.Since(started), time.Second)
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := pollUntil(ctx, time.Second, time.Millisecond, func(context.Context) (bool, error) {
			return false, nil
		})

		require.ErrorIs(t, err, context.Canceled)
	})
}

// TestSleep tests the cancellable pause.
func TestSleep(t *testing.T) {
	t.Parallel()

	require.NoError(t, sleep(context.Background(), 0))
	require.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
}

// TestTimeoutsWithDefaults tests that zero timeouts fall back to defaults.
func TestTimeoutsWithDefaults(t *testing.T) {
	t.Parallel()

	timeouts := Timeouts{Callback: time.Second}.withDefaults()
	defaults := DefaultTimeouts()

	assert.Equal(t, time.Second, timeouts.Callback)
	assert.Equal(t, defaults.Challenge, timeouts.Challenge)
	assert.Equal(t, defaults.PollInterval, timeouts.PollInterval)
	assert.Greater(t, defaults.Total(), defaults.Challenge)
	assert.Equal(t, defaults.Capture, timeouts.Capture)
	assert.Equal(t, time.Minute, defaults.SecretRequest)
}

// TestSeedSnapshot tests how cached and negotiated cookies are combined.
func TestSeedSnapshot(t *testing.T) {
	t.Parallel()

	assert.Nil(t, seedSnapshot(nil, nil))
	assert.Nil(t, seedSnapshot(&session.Snapshot{}, nil))

	cached := &session.Snapshot{
		Cookies: []cookie.Cookie{
			{Name: "session", Value: "cached", Domain: "anyrouter.top", Path: "/"},
			{Name: "user_session", Value: "gh", Domain: ".github.com", Path: "/"},
		},
		Origins: []session.OriginStorage{{Origin: "https://anyrouter.top"}},
	}

	seed := seedSnapshot(cached, []cookie.Cookie{
		{Name: "session", Value: "negotiated", Domain: ".anyrouter.top", Path: "/"},
	})

	require.Len(t, seed.Cookies, 2)
	assert.Equal(t, "negotiated", seed.Cookies[0].Value)
	assert.Equal(t, "gh", seed.Cookies[1].Value)
	assert.Len(t, seed.Origins, 1)
	assert.Equal(t, "cached", cached.Cookies[0].Value)

	seed = seedSnapshot(nil, []cookie.Cookie{{Name: "session", Value: "negotiated"}})
	require.Len(t, seed.Cookies, 1)
	assert.Empty(t, seed.Origins)
}
