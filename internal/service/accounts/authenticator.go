package accounts

//go:generate $MOCKGEN -source=authenticator.go -destination=mocks/authenticator_mock.go

import (
	"context"

	"github.com/oshokin/newapi-signin/internal/service/signin"
)

// Authenticator runs one browser sign-in.
type Authenticator interface {
	// SignIn drives the sign-in and returns its outcome.
	SignIn(ctx context.Context, req signin.Request) signin.Result
}
