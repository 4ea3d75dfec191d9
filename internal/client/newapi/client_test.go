package newapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/newapi-signin/internal/utils"
)

const testUserAgent = "TestAgent/1.0"

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *ClientImpl) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "", utils.NewFixedUserAgentProvider(testUserAgent))
	require.NoError(t, err)

	return server, client
}

// TestNewClient tests origin validation and defaults.
func TestNewClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient("https://anyrouter.top/", "api/oauth/state", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://anyrouter.top", client.Origin())
	assert.Equal(t, DefaultStateURI, client.stateURI)

	_, err = NewClient("anyrouter.top", "", nil)
	require.ErrorIs(t, err, ErrInvalidOrigin)
}

// TestFetchOAuthState tests state negotiation and cookie capture.
func TestFetchOAuthState(t *testing.T) {
	t.Parallel()

	userAgents := make(chan string, 1)

	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultStateURI, r.URL.Path)

		userAgents <- r.Header.Get("User-Agent")

		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/", HttpOnly: true})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"","data":"st4te"}`))
	})

	state, cookies, err := client.FetchOAuthState(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "st4te", state)
	assert.Equal(t, testUserAgent, <-userAgents)
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, "abc", cookies[0].Value)
	assert.Equal(t, "127.0.0.1", cookies[0].Domain)
	assert.Equal(t, "/", cookies[0].Path)
}

// TestFetchOAuthStateFailures tests the error paths of the state endpoint.
func TestFetchOAuthStateFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "non-200 status",
			status:  http.StatusForbidden,
			body:    `{}`,
			wantErr: ErrUnexpectedHTTPStatus,
		},
		{
			name:    "success false",
			status:  http.StatusOK,
			body:    `{"success":false,"message":"oauth disabled"}`,
			wantErr: ErrUnsuccessful,
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `<html>blocked</html>`,
			wantErr: ErrUnsuccessful,
		},
		{
			name:    "empty state",
			status:  http.StatusOK,
			body:    `{"success":true,"data":""}`,
			wantErr: ErrEmptyState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			state, cookies, err := client.FetchOAuthState(context.Background())
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, state)
			assert.Nil(t, cookies)
		})
	}
}

// TestFetchClientIDs tests client id discovery from the status endpoint.
func TestFetchClientIDs(t *testing.T) {
	t.Parallel()

	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, statusURI, r.URL.Path)

		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"github_oauth": true,
				"github_client_id": "Ov23liOwlnIiYoF3bUqw",
				"linuxdo_oauth": false
			}
		}`))
	})

	ids, err := client.FetchClientIDs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Ov23liOwlnIiYoF3bUqw", ids.GitHub)
	assert.Empty(t, ids.LinuxDo)
}

// TestFetchCanceled tests that a canceled context aborts the request.
func TestFetchCanceled(t *testing.T) {
	t.Parallel()

	_, client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":"x"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchClientIDs(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
