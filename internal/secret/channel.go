package secret

//go:generate $MOCKGEN -source=channel.go -destination=mocks/channel_mock.go

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when no secret could be produced before the deadline.
var ErrUnavailable = errors.New("secret not available before deadline")

// Descriptor names one secret the caller needs.
type Descriptor struct {
	// Name is the logical key of the secret in the response map, e.g. "OTP".
	Name string
	// Description is shown to a human when the channel is interactive.
	Description string
}

// Request asks for one or more secrets.
type Request struct {
	// Descriptors lists the secrets wanted.
	Descriptors []Descriptor
	// Timeout bounds how long the channel may take.
	Timeout time.Duration
}

// Channel resolves secrets on demand.
type Channel interface {
	// Request returns a value for every descriptor it could resolve, or ErrUnavailable.
	// Implementations must return no later than req.Timeout after the call.
	Request(ctx context.Context, req Request) (map[string]string, error)
}

// Names returns the descriptor names of the request.
func (r Request) Names() []string {
	names := make([]string, 0, len(r.Descriptors))
	for _, d := range r.Descriptors {
		names = append(names, d.Name)
	}

	return names
}

// withDeadline derives a context bounded by the request timeout.
// A non-positive timeout leaves only the parent's deadline.
func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}
