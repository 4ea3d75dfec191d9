package accounts

import "errors"

var (
	// ErrUnknownProvider indicates an account references a relying party that is not configured.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrUnsupportedMethod indicates an identity provider without a preset.
	ErrUnsupportedMethod = errors.New("unsupported sign-in method")
	// ErrNoClientID indicates the relying party has no OAuth client id for the identity provider.
	ErrNoClientID = errors.New("no OAuth client id")
)

// Stages recorded for failures that happen before the browser starts.
const (
	stagePrepare    = "prepare"
	stageOAuthState = "oauth_state"
	kindSetup       = "setup_error"
)
