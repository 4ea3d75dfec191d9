package http

import (
	"net/http"

	"github.com/oshokin/newapi-signin/internal/utils"
)

// HeadersInjector is a custom http.RoundTripper that fills in the headers a browser would send.
// It never overrides headers the caller set explicitly.
type HeadersInjector struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// userAgentProvider provides the User-Agent string to inject.
	userAgentProvider utils.UserAgentProvider
}

const (
	userAgentHeader      = "User-Agent"
	acceptLanguageHeader = "Accept-Language"
	acceptHeader         = "Accept"
	defaultAccept        = "application/json, text/plain, */*"
)

// NewHeadersInjector creates and returns a new instance of HeadersInjector.
func NewHeadersInjector(next http.RoundTripper, userAgentProvider utils.UserAgentProvider) http.RoundTripper {
	return &HeadersInjector{
		next:              next,
		userAgentProvider: userAgentProvider,
	}
}

// RoundTrip executes a single HTTP transaction and injects missing browser headers.
// It implements the http.RoundTripper interface.
func (t *HeadersInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())

	if req.Header.Get(userAgentHeader) == "" {
		req.Header.Set(userAgentHeader, t.userAgentProvider.GetUserAgent())
	}

	if req.Header.Get(acceptLanguageHeader) == "" {
		req.Header.Set(acceptLanguageHeader, DefaultAcceptLanguage)
	}

	if req.Header.Get(acceptHeader) == "" {
		req.Header.Set(acceptHeader, defaultAccept)
	}

	return t.next.RoundTrip(req)
}
