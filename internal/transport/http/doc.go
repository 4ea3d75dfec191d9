// Package http provides http.RoundTripper decorators for the relying-party client:
// debug logging with cookie redaction, and injection of the browser-like headers
// that the sign-in browser sessions also present.
package http
