package signin_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/newapi-signin/internal/service/signin"
)

// TestBuildAuthorizeURL tests authorize URL construction for both presets.
func TestBuildAuthorizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		endpoints signin.ProviderEndpoints
		host      string
		scope     string
	}{
		{name: "github", endpoints: signin.GitHub(testOrigin), host: "github.com", scope: "user:email"},
		{name: "linuxdo", endpoints: signin.LinuxDo(testOrigin), host: "connect.linux.do"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := url.Parse(tt.endpoints.BuildAuthorizeURL("client id", "st&ate"))
			require.NoError(t, err)

			assert.Equal(t, tt.host, parsed.Host)
			assert.Equal(t, "code", parsed.Query().Get("response_type"))
			assert.Equal(t, "client id", parsed.Query().Get("client_id"))
			assert.Equal(t, "st&ate", parsed.Query().Get("state"))
			assert.Equal(t, tt.scope, parsed.Query().Get("scope"))
		})
	}
}

// TestEndpointsMatching tests origin, callback and challenge matching.
func TestEndpointsMatching(t *testing.T) {
	t.Parallel()

	github := signin.GitHub(testOrigin + "/")
	linuxdo := signin.LinuxDo(testOrigin)

	assert.Equal(t, testOrigin, github.Origin)

	assert.True(t, github.InOrigin("https://anyrouter.top/console"))
	assert.True(t, github.InOrigin("https://AnyRouter.top/"))
	assert.False(t, github.InOrigin("http://anyrouter.top/"))
	assert.False(t, github.InOrigin("https://anyrouter.top.evil.example/"))
	assert.False(t, github.InOrigin("https://github.com/?next=https://anyrouter.top"))
	assert.False(t, github.InOrigin("::"))

	assert.True(t, github.IsCallback("https://anyrouter.top/oauth/github?code=1"))
	assert.False(t, github.IsCallback("https://anyrouter.top/console"))
	assert.False(t, github.IsCallback("https://github.com/oauth/github?code=1"))

	assert.False(t, github.IsChallenge("https://linux.do/challenge"))
	assert.True(t, linuxdo.IsChallenge("https://linux.do/challenge?redirect=/"))
	assert.False(t, linuxdo.IsChallenge("https://linux.do/login"))
}

// TestEndpointsPreset tests preset lookup by name.
func TestEndpointsPreset(t *testing.T) {
	t.Parallel()

	endpoints, ok := signin.Endpoints(signin.ProviderLinuxDo, testOrigin)
	require.True(t, ok)
	assert.Equal(t, "#login-button", endpoints.SubmitSelector)

	_, ok = signin.Endpoints("gitlab", testOrigin)
	assert.False(t, ok)
}

// TestKindString tests failure kind names.
func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "oauth_timeout", signin.KindOAuthTimeout.String())
	assert.Equal(t, "engine_error", signin.KindEngine.String())
	assert.Equal(t, "kind(42)", signin.Kind(42).String())
}
