package signin

import (
	"fmt"
	"net/url"

	"github.com/oshokin/newapi-signin/internal/cookie"
)

// Result is the outcome of a sign-in: *Authorized, *OAuthCodeOnly or *Failed.
type Result interface {
	isResult()
}

// Authorized carries the relying-party session.
type Authorized struct {
	// Cookies are scoped to the relying-party origin.
	Cookies []cookie.Cookie
	// UserID is the application user id read from the page.
	UserID string
}

// OAuthCodeOnly is returned when the redirect happened but the user id could not be read.
// The caller has to exchange the code itself.
type OAuthCodeOnly struct {
	// Query is the query of the callback URL; it contains "code".
	Query url.Values
}

// Failed reports where and why a sign-in gave up.
type Failed struct {
	Stage Stage
	Kind  Kind
	Err   error
}

func (*Authorized) isResult()    {}
func (*OAuthCodeOnly) isResult() {}
func (*Failed) isResult()        {}

// Error implements error.
func (f *Failed) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("sign-in failed at %s: %s", f.Stage, f.Kind)
	}

	return fmt.Sprintf("sign-in failed at %s: %s: %v", f.Stage, f.Kind, f.Err)
}

// Unwrap returns the underlying error.
func (f *Failed) Unwrap() error {
	return f.Err
}

// Stage names a step of the sign-in.
type Stage string

// Stages in the order they run.
const (
	StageInit         Stage = "init"
	StageCacheCheck   Stage = "cache_check"
	StageLogin        Stage = "login"
	StageSecondFactor Stage = "second_factor"
	StageChallenge    Stage = "challenge"
	StageAuthorize    Stage = "authorize"
	StageConsent      Stage = "consent"
	StageCallback     Stage = "callback"
	StageIdentity     Stage = "identity"
)

// Kind classifies a failure or anomaly.
type Kind int

// Failure kinds.
const (
	// KindEngine is any unexpected browser or navigation fault.
	KindEngine Kind = iota
	// KindSecondFactorUnresolved means no code arrived; the flow waits for a human instead.
	KindSecondFactorUnresolved
	// KindChallengeTimeout means the bot-mitigation page did not clear in time; the flow continues.
	KindChallengeTimeout
	// KindOAuthTimeout means the redirect to the relying party never happened.
	KindOAuthTimeout
	// KindNoIdentity means neither a user id nor an authorization code was found.
	KindNoIdentity
	// KindCanceled means the caller's context ended the sign-in.
	KindCanceled
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindEngine:
		return "engine_error"
	case KindSecondFactorUnresolved:
		return "second_factor_unresolved"
	case KindChallengeTimeout:
		return "challenge_timeout"
	case KindOAuthTimeout:
		return "oauth_timeout"
	case KindNoIdentity:
		return "no_identity"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}
