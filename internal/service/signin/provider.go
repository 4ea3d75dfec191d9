package signin

import (
	"net/url"
	"strings"
	"time"
)

// Provider names.
const (
	ProviderGitHub  = "github"
	ProviderLinuxDo = "linuxdo"
)

const (
	// DefaultCallbackPath is the relying-party path OAuth providers redirect to.
	DefaultCallbackPath = "/oauth/"
	// DefaultUserStorageKey is the localStorage key holding the signed-in user.
	DefaultUserStorageKey = "user"
	// DefaultUserIDPath is the gjson path of the id inside the stored user.
	DefaultUserIDPath = "id"
)

// Interstitial is an optional page shown between login and consent, such as account selection.
type Interstitial struct {
	// Marker is present only while the interstitial is shown.
	Marker string
	// Action resolves the interstitial when clicked.
	Action string
}

// ProviderEndpoints describes one identity provider as seen by one relying party.
// Values are built once and only read afterwards.
type ProviderEndpoints struct {
	// Name identifies the provider in logs, cache keys and diagnostics.
	Name string
	// Origin is the relying-party origin, e.g. "https://anyrouter.top".
	Origin string
	// AuthorizeURL is the provider's OAuth authorize endpoint without a query.
	AuthorizeURL string
	// Scope is sent as the scope parameter when not empty.
	Scope string
	// LoginURL is the provider's login page.
	LoginURL string
	// UsernameSelector matches the login field.
	UsernameSelector string
	// PasswordSelector matches the password field.
	PasswordSelector string
	// SubmitSelector matches the login button.
	SubmitSelector string
	// FieldDelay is paused after filling each login field.
	FieldDelay time.Duration
	// Interstitial is resolved automatically when its marker shows up after login.
	Interstitial *Interstitial
	// SecondFactorSelector matches the one-time code field; empty disables the check.
	SecondFactorSelector string
	// ApproveSelector matches the consent control.
	ApproveSelector string
	// ChallengeMarker is a URL substring of the bot-mitigation page; empty when the provider has none.
	ChallengeMarker string
	// CallbackPath is the relying-party path of the OAuth redirect.
	CallbackPath string
	// UserStorageKey is the localStorage key of the signed-in user.
	UserStorageKey string
	// UserIDPath is the gjson path of the id inside the stored user.
	UserIDPath string
}

// GitHub returns the endpoints of GitHub OAuth for the relying party at origin.
func GitHub(origin string) ProviderEndpoints {
	return ProviderEndpoints{
		Name:             ProviderGitHub,
		Origin:           strings.TrimRight(origin, "/"),
		AuthorizeURL:     "https://github.com/login/oauth/authorize",
		Scope:            "user:email",
		LoginURL:         "https://github.com/login",
		UsernameSelector: "#login_field",
		PasswordSelector: "#password",
		SubmitSelector:   `input[type="submit"][value="Sign in"]`,
		Interstitial: &Interstitial{
			Marker: `form[action="/switch_account"]`,
			Action: `form[action="/switch_account"] input[type="submit"]`,
		},
		SecondFactorSelector: `input[name="otp"]`,
		ApproveSelector:      `button[type="submit"]`,
		CallbackPath:         DefaultCallbackPath,
		UserStorageKey:       DefaultUserStorageKey,
		UserIDPath:           DefaultUserIDPath,
	}
}

// LinuxDo returns the endpoints of Linux.do Connect for the relying party at origin.
func LinuxDo(origin string) ProviderEndpoints {
	return ProviderEndpoints{
		Name:             ProviderLinuxDo,
		Origin:           strings.TrimRight(origin, "/"),
		AuthorizeURL:     "https://connect.linux.do/oauth2/authorize",
		LoginURL:         "https://linux.do/login",
		UsernameSelector: "#login-account-name",
		PasswordSelector: "#login-account-password",
		SubmitSelector:   "#login-button",
		FieldDelay:       2 * time.Second,
		ApproveSelector:  `a[href^="/oauth2/approve"]`,
		ChallengeMarker:  "linux.do/challenge",
		CallbackPath:     DefaultCallbackPath,
		UserStorageKey:   DefaultUserStorageKey,
		UserIDPath:       DefaultUserIDPath,
	}
}

// Endpoints returns the preset for a provider name.
func Endpoints(provider, origin string) (ProviderEndpoints, bool) {
	switch provider {
	case ProviderGitHub:
		return GitHub(origin), true
	case ProviderLinuxDo:
		return LinuxDo(origin), true
	default:
		return ProviderEndpoints{}, false
	}
}

// BuildAuthorizeURL returns the authorize URL for clientID and the anti-CSRF state.
func (e ProviderEndpoints) BuildAuthorizeURL(clientID, state string) string {
	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", clientID)
	query.Set("state", state)

	if e.Scope != "" {
		query.Set("scope", e.Scope)
	}

	return e.AuthorizeURL + "?" + query.Encode()
}

// InOrigin reports whether rawURL belongs to the relying-party origin.
func (e ProviderEndpoints) InOrigin(rawURL string) bool {
	target, err := url.Parse(rawURL)
	if err != nil || target.Host == "" {
		return false
	}

	origin, err := url.Parse(e.Origin)
	if err != nil {
		return false
	}

	return strings.EqualFold(target.Scheme, origin.Scheme) && strings.EqualFold(target.Host, origin.Host)
}

// IsCallback reports whether rawURL is the OAuth redirect into the relying party.
func (e ProviderEndpoints) IsCallback(rawURL string) bool {
	if !e.InOrigin(rawURL) {
		return false
	}

	target, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	callbackPath := e.CallbackPath
	if callbackPath == "" {
		callbackPath = DefaultCallbackPath
	}

	return strings.HasPrefix(target.Path, callbackPath)
}

// IsChallenge reports whether rawURL is the provider's bot-mitigation page.
func (e ProviderEndpoints) IsChallenge(rawURL string) bool {
	return e.ChallengeMarker != "" && strings.Contains(rawURL, e.ChallengeMarker)
}

func (e ProviderEndpoints) userStorageKey() string {
	if e.UserStorageKey == "" {
		return DefaultUserStorageKey
	}

	return e.UserStorageKey
}

func (e ProviderEndpoints) userIDPath() string {
	if e.UserIDPath == "" {
		return DefaultUserIDPath
	}

	return e.UserIDPath
}
