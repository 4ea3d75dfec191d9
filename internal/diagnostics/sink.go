package diagnostics

//go:generate $MOCKGEN -source=sink.go -destination=mocks/sink_mock.go

import "context"

// Target is the page being diagnosed.
type Target interface {
	// Screenshot returns a PNG of the visible page.
	Screenshot(ctx context.Context) ([]byte, error)
	// HTML returns the current page markup.
	HTML(ctx context.Context) (string, error)
}

// Capture describes one diagnostic event.
type Capture struct {
	// Account is the human account identifier; it is sanitized before use in file names.
	Account string
	// Provider is the identity provider name.
	Provider string
	// Reason is a short tag such as "oauth_timeout".
	Reason string
}

// Sink persists diagnostics.
type Sink interface {
	// Capture records whatever the target can still provide.
	Capture(ctx context.Context, target Target, capture Capture)
}

// Nop discards every capture.
type Nop struct{}

// Capture does nothing.
func (Nop) Capture(context.Context, Target, Capture) {}
