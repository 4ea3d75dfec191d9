package accounts

import (
	"errors"
	"net/url"
	"time"

	"github.com/oshokin/newapi-signin/internal/cookie"
	"github.com/oshokin/newapi-signin/internal/service/signin"
)

// Status is the outcome class of one sign-in.
type Status string

// Sign-in statuses.
const (
	// StatusAuthorized means cookies and a user id were obtained.
	StatusAuthorized Status = "authorized"
	// StatusCodeOnly means only the OAuth authorization code was obtained.
	StatusCodeOnly Status = "oauth_code_only"
	// StatusFailed means the sign-in gave up.
	StatusFailed Status = "failed"
)

// AccountResult is the outcome of one account at one identity provider.
type AccountResult struct {
	// Account is the configured account name.
	Account string `yaml:"account"`
	// Provider is the relying party name.
	Provider string `yaml:"provider"`
	// Origin is the relying-party origin the cookies belong to.
	Origin string `yaml:"origin"`
	// Method is the identity provider used.
	Method string `yaml:"method"`
	// Status classifies the outcome.
	Status Status `yaml:"status"`
	// UserID is the application user id, sent as the new-api-user header by the check-in client.
	UserID string `yaml:"user_id,omitempty"`
	// Cookies are scoped to Origin.
	Cookies []cookie.Cookie `yaml:"cookies,omitempty"`
	// CookieHeader is Cookies rendered as a Cookie request header.
	CookieHeader string `yaml:"cookie_header,omitempty"`
	// CallbackQuery is the OAuth redirect query when only a code was obtained.
	CallbackQuery url.Values `yaml:"callback_query,omitempty"`
	// Stage is where a failed sign-in stopped.
	Stage string `yaml:"stage,omitempty"`
	// Kind classifies a failure.
	Kind string `yaml:"kind,omitempty"`
	// Error describes a failure.
	Error string `yaml:"error,omitempty"`
	// Duration is the wall time of the sign-in.
	Duration time.Duration `yaml:"duration"`
}

// Succeeded reports whether the relying party accepted the sign-in.
func (r *AccountResult) Succeeded() bool {
	return r.Status == StatusAuthorized || r.Status == StatusCodeOnly
}

// apply records a driver result.
func (r *AccountResult) apply(result signin.Result) {
	switch res := result.(type) {
	case *signin.Authorized:
		r.Status = StatusAuthorized
		r.UserID = res.UserID
		r.Cookies = res.Cookies
		r.CookieHeader = cookie.Header(res.Cookies)
	case *signin.OAuthCodeOnly:
		r.Status = StatusCodeOnly
		r.CallbackQuery = res.Query
	case *signin.Failed:
		r.fail(string(res.Stage), res.Kind.String(), res.Err)
	default:
		r.fail(string(signin.StageInit), signin.KindEngine.String(), errUnknownResult)
	}
}

// fail records a failure that happened before or inside the driver.
func (r *AccountResult) fail(stage, kind string, err error) {
	r.Status = StatusFailed
	r.Stage = stage
	r.Kind = kind

	if err != nil {
		r.Error = err.Error()
	}
}

var errUnknownResult = errors.New("unknown sign-in result")
