package browser

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/newapi-signin/internal/cookie"
	"github.com/oshokin/newapi-signin/internal/session"
)

// TestStorageSeedScript tests the init script built from snapshot storage.
func TestStorageSeedScript(t *testing.T) {
	t.Parallel()

	script, err := storageSeedScript(nil)
	require.NoError(t, err)
	assert.Empty(t, script)

	script, err = storageSeedScript([]session.OriginStorage{
		{Origin: "https://empty.example"},
		{
			Origin:       "https://anyrouter.top",
			LocalStorage: []session.StorageItem{{Name: "user", Value: `{"id":7}`}},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, script, `"https://anyrouter.top"`)
	assert.Contains(t, script, `{\"id\":7}`)
	assert.NotContains(t, script, "empty.example")
	assert.Contains(t, script, "window.location.origin")
}

// TestParseStorageDump tests decoding of the storage dump.
func TestParseStorageDump(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		expected session.OriginStorage
		ok       bool
	}{
		{
			name: "local and session storage",
			raw: `{"origin":"https://agentrouter.org",` +
				`"localStorage":[{"name":"user","value":"{\"id\":1}"}],` +
				`"sessionStorage":[{"name":"tab","value":"2"}]}`,
			expected: session.OriginStorage{
				Origin:         "https://agentrouter.org",
				LocalStorage:   []session.StorageItem{{Name: "user", Value: `{"id":1}`}},
				SessionStorage: []session.StorageItem{{Name: "tab", Value: "2"}},
			},
			ok: true,
		},
		{
			name: "opaque origin",
			raw:  `{"origin":"null","localStorage":[],"sessionStorage":[]}`,
		},
		{
			name: "garbage",
			raw:  `not json`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			storage, ok := parseStorageDump(tt.raw)
			assert.Equal(t, tt.ok, ok)

			if tt.ok {
				assert.Equal(t, tt.expected, storage)
			}
		})
	}
}

// TestCookieConversion tests conversion between engine cookies and captured cookies.
func TestCookieConversion(t *testing.T) {
	t.Parallel()

	captured := fromNetworkCookies([]*proto.NetworkCookie{
		{
			Name:     "session",
			Value:    "abc",
			Domain:   "anyrouter.top",
			Path:     "/",
			Expires:  1893456000,
			HTTPOnly: true,
			SameSite: proto.NetworkCookieSameSiteLax,
		},
		nil,
		{Name: "tmp", Value: "1", Domain: ".github.com", Path: "/", Expires: -1, Session: true},
	})

	require.Len(t, captured, 2)
	assert.Equal(t, cookie.Cookie{
		Name:     "session",
		Value:    "abc",
		Domain:   "anyrouter.top",
		Path:     "/",
		Expires:  1893456000,
		HTTPOnly: true,
		SameSite: "Lax",
	}, captured[0])
	assert.Zero(t, captured[1].Expires)

	params := toCookieParams([]cookie.Cookie{captured[0], {Name: "n", Value: "v", Domain: "x.org", Expires: -1}})

	require.Len(t, params, 2)
	assert.Equal(t, proto.TimeSinceEpoch(1893456000), params[0].Expires)
	assert.Equal(t, proto.NetworkCookieSameSiteLax, params[0].SameSite)
	assert.Equal(t, "/", params[1].Path)
	assert.Zero(t, params[1].Expires)
}
