package signin

import (
	"errors"
	"fmt"
)

var (
	// ErrPanic wraps a panic recovered inside a stage.
	ErrPanic = errors.New("browser engine panicked")

	// ErrOAuthTimeout is returned when the relying party never received the redirect.
	ErrOAuthTimeout = errors.New("oauth callback not reached")

	// ErrNoIdentity is returned when neither a user id nor an authorization code was found.
	ErrNoIdentity = errors.New("no user id and no authorization code")
)

// kindError tags an error with the failure kind it resolves to.
type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string {
	return e.err.Error()
}

func (e *kindError) Unwrap() error {
	return e.err
}

func withKind(kind Kind, err error) error {
	return &kindError{kind: kind, err: err}
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrPanic, err)
	}

	return fmt.Errorf("%w: %v", ErrPanic, r)
}
