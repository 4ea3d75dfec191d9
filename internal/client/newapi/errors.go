package newapi

import "errors"

var (
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrUnsuccessful indicates the backend answered with success set to false.
	ErrUnsuccessful = errors.New("relying party reported failure")
	// ErrEmptyState indicates the state endpoint returned no token.
	ErrEmptyState = errors.New("empty OAuth state")
	// ErrInvalidOrigin indicates the configured origin is not an absolute URL.
	ErrInvalidOrigin = errors.New("invalid relying-party origin")
)
