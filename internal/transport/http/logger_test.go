package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRedactSecrets tests that session headers never reach the log.
func TestRedactSecrets(t *testing.T) {
	t.Parallel()

	dump := "GET /api/oauth/state HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Cookie: session=abc123\r\n" +
		"Authorization: Bearer token\r\n\r\n"

	redacted := string(redactSecrets([]byte(dump)))

	assert.NotContains(t, redacted, "abc123")
	assert.NotContains(t, redacted, "Bearer token")
	assert.Contains(t, redacted, "Cookie: "+redactedValue)
	assert.Contains(t, redacted, "Host: example.com")

	response := "HTTP/1.1 200 OK\r\nSet-Cookie: session=xyz; Path=/\r\n\r\n"
	assert.NotContains(t, string(redactSecrets([]byte(response))), "xyz")
}

// TestLogTransport_Truncate tests dump truncation.
func TestLogTransport_Truncate(t *testing.T) {
	t.Parallel()

	transport, ok := NewLogTransport(http.DefaultTransport, 4).(*LogTransport)
	require.True(t, ok)

	assert.Equal(t, "abcd... [truncated]", transport.truncate([]byte("abcdef")))
	assert.Equal(t, "abc", transport.truncate([]byte("abc")))

	defaulted, ok := NewLogTransport(http.DefaultTransport, 0).(*LogTransport)
	require.True(t, ok)
	assert.Equal(t, uint64(DefaultMaxLogLength), defaulted.maxLogLength)
}

// TestLogTransport_RoundTrip tests that requests pass through unchanged.
func TestLogTransport_RoundTrip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	transport := NewLogTransport(http.DefaultTransport, 0)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil) //nolint:noctx // Test code, context not needed.
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)

	defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = transport.RoundTrip(nil) //nolint:bodyclose // Nil response on error.
	require.ErrorIs(t, err, ErrNilRequest)
}
