package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/newapi-signin/internal/utils"
	mock_utils "github.com/oshokin/newapi-signin/internal/utils/mocks"
)

// TestHeadersInjector_RoundTrip tests header injection rules.
func TestHeadersInjector_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		presetUserAgent    string
		presetLanguage     string
		expectProviderCall bool
		wantUserAgent      string
		wantLanguage       string
	}{
		{
			name:               "missing headers are injected",
			expectProviderCall: true,
			wantUserAgent:      "TestAgent/1.0",
			wantLanguage:       DefaultAcceptLanguage,
		},
		{
			name:            "explicit headers are preserved",
			presetUserAgent: "ExistingAgent/1.0",
			presetLanguage:  "zh-CN",
			wantUserAgent:   "ExistingAgent/1.0",
			wantLanguage:    "zh-CN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)

			mockProvider := mock_utils.NewMockUserAgentProvider(ctrl)
			if tt.expectProviderCall {
				mockProvider.EXPECT().GetUserAgent().Return("TestAgent/1.0").Times(1)
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantUserAgent, r.Header.Get("User-Agent"))
				assert.Equal(t, tt.wantLanguage, r.Header.Get("Accept-Language"))
				assert.NotEmpty(t, r.Header.Get("Accept"))
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			injector := NewHeadersInjector(http.DefaultTransport, mockProvider)

			req, err := http.NewRequest(http.MethodGet, server.URL, nil) //nolint:noctx // Test code, context not needed.
			require.NoError(t, err)

			if tt.presetUserAgent != "" {
				req.Header.Set("User-Agent", tt.presetUserAgent)
			}

			if tt.presetLanguage != "" {
				req.Header.Set("Accept-Language", tt.presetLanguage)
			}

			resp, err := injector.RoundTrip(req)
			require.NoError(t, err)

			defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Empty(t, req.Header.Get("Accept"), "caller's request must stay untouched")
		})
	}
}

// TestHeadersInjector_NilRequest tests that a nil request is rejected.
func TestHeadersInjector_NilRequest(t *testing.T) {
	t.Parallel()

	injector := NewHeadersInjector(http.DefaultTransport, utils.NewFixedUserAgentProvider(""))

	resp, err := injector.RoundTrip(nil) //nolint:bodyclose // Nil response on error.
	require.ErrorIs(t, err, ErrNilRequest)
	assert.Nil(t, resp)
}

// TestHeadersInjector_TransportError tests that transport errors are passed through.
func TestHeadersInjector_TransportError(t *testing.T) {
	t.Parallel()

	injector := NewHeadersInjector(http.DefaultTransport, utils.NewFixedUserAgentProvider(""))

	req, err := http.NewRequest(http.MethodGet, "http://[::1]:0", nil) //nolint:noctx // Test code, context not needed.
	require.NoError(t, err)

	resp, err := injector.RoundTrip(req) //nolint:bodyclose // Body is empty on error.
	require.Error(t, err)
	assert.Nil(t, resp)
}
