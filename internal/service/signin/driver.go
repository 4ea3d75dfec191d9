package signin

import (
	"context"

	"github.com/oshokin/newapi-signin/internal/cookie"
	"github.com/oshokin/newapi-signin/internal/diagnostics"
	"github.com/oshokin/newapi-signin/internal/logger"
	"github.com/oshokin/newapi-signin/internal/secret"
	"github.com/oshokin/newapi-signin/internal/session"
)

// Page is one isolated browser context as the sign-in flow sees it.
type Page interface {
	diagnostics.Target

	// Navigate opens url.
	Navigate(ctx context.Context, url string) error
	// URL returns the current URL.
	URL() (string, error)
	// VisitedURLs returns the URLs the main frame has committed since the page opened, oldest first.
	// In-document route changes are included.
	VisitedURLs() []string
	// Has reports whether selector matches right now.
	Has(ctx context.Context, selector string) (bool, error)
	// Fill types value into the field matched by selector.
	Fill(ctx context.Context, selector, value string) error
	// Click presses the element matched by selector.
	Click(ctx context.Context, selector string) error
	// LocalStorageItem reads localStorage of the current origin.
	LocalStorageItem(ctx context.Context, key string) (string, bool, error)
	// Cookies returns every cookie of the context.
	Cookies(ctx context.Context) ([]cookie.Cookie, error)
	// Snapshot serializes cookies and storage.
	Snapshot(ctx context.Context) (*session.Snapshot, error)
	// Close releases the context.
	Close() error
}

// Browser opens pages seeded with a snapshot.
type Browser interface {
	// Open creates a fresh context seeded with seed, which may be nil.
	Open(ctx context.Context, seed *session.Snapshot) (Page, error)
}

// BrowserFunc adapts a function to Browser.
type BrowserFunc func(ctx context.Context, seed *session.Snapshot) (Page, error)

// Open calls f.
func (f BrowserFunc) Open(ctx context.Context, seed *session.Snapshot) (Page, error) {
	return f(ctx, seed)
}

// Credentials authenticate the account at the provider.
// They are only typed into the login form.
type Credentials struct {
	Username string
	Password string
}

// String keeps credentials out of logs.
func (Credentials) String() string {
	return "[redacted]"
}

// GoString keeps credentials out of %#v output.
func (c Credentials) GoString() string {
	return c.String()
}

// Request is the input of one sign-in.
type Request struct {
	// Account is the human account name used in logs and diagnostics.
	Account string
	// Endpoints describe the provider.
	Endpoints ProviderEndpoints
	// Credentials are typed into the login form when no cached session works.
	Credentials Credentials
	// ClientID is the relying party's OAuth client id at the provider.
	ClientID string
	// State is the anti-CSRF token negotiated with the relying party.
	State string
	// ExternalCookies were minted alongside State and must accompany the callback.
	ExternalCookies []cookie.Cookie
	// CacheKey selects the snapshot; empty means session.Key(Account, Endpoints.Name).
	CacheKey string
}

func (r Request) cacheKey() string {
	if r.CacheKey != "" {
		return r.CacheKey
	}

	return session.Key(r.Account, r.Endpoints.Name)
}

// Driver runs sign-ins. It holds no per-call state and is safe for concurrent use
// as long as each call uses its own cache key.
type Driver struct {
	browser  Browser
	cache    SnapshotCache
	secrets  secret.Channel
	sink     diagnostics.Sink
	timeouts Timeouts
}

// NewDriver creates a driver. A nil secrets channel never answers and a nil sink discards captures.
func NewDriver(browser Browser, cache SnapshotCache, secrets secret.Channel, sink diagnostics.Sink, opts ...Option) *Driver {
	if sink == nil {
		sink = diagnostics.Nop{}
	}

	d := &Driver{
		browser:  browser,
		cache:    cache,
		secrets:  secrets,
		sink:     sink,
		timeouts: DefaultTimeouts(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// SignIn runs one sign-in and always returns exactly one Result.
func (d *Driver) SignIn(ctx context.Context, req Request) (result Result) {
	ctx = logger.WithKV(ctx, "account", req.Account, "provider", req.Endpoints.Name)

	f := &flow{
		driver:       d,
		req:          req,
		key:          req.cacheKey(),
		authorizeURL: req.Endpoints.BuildAuthorizeURL(req.ClientID, req.State),
	}

	defer func() {
		if r := recover(); r != nil {
			result = f.fail(ctx, StageInit, KindEngine, panicError(r))
		}
	}()

	logger.Infof(ctx, "Signing in with %s", req.Endpoints.Name)

	result = f.execute(ctx)

	switch r := result.(type) {
	case *Authorized:
		logger.Infof(ctx, "Signed in as user %s with %d cookies", r.UserID, len(r.Cookies))
	case *OAuthCodeOnly:
		logger.Warn(ctx, "Signed in without a user id, returning the authorization code")
	case *Failed:
		logger.Errorf(ctx, "Sign-in failed: %v", r)
	}

	return result
}
