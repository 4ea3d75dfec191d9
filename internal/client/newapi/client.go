package newapi

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/net/publicsuffix"

	"github.com/oshokin/newapi-signin/internal/cookie"
	"github.com/oshokin/newapi-signin/internal/logger"
	http_transport "github.com/oshokin/newapi-signin/internal/transport/http"
	"github.com/oshokin/newapi-signin/internal/utils"
)

// Client defines the relying-party calls needed before a browser sign-in.
type Client interface {
	// FetchOAuthState returns a fresh OAuth state token and the cookies minted with it.
	FetchOAuthState(ctx context.Context) (string, []cookie.Cookie, error)
	// FetchClientIDs returns the OAuth client ids advertised by the backend.
	FetchClientIDs(ctx context.Context) (*ClientIDs, error)
	// Origin returns the relying-party origin.
	Origin() string
}

// ClientIDs holds the OAuth client ids advertised on the status endpoint.
type ClientIDs struct {
	// GitHub is the GitHub OAuth App client id; empty when GitHub sign-in is disabled.
	GitHub string
	// LinuxDo is the Linux.do client id; empty when Linux.do sign-in is disabled.
	LinuxDo string
}

// ClientImpl implements Client over net/http with a private cookie jar.
type ClientImpl struct {
	// origin is the relying-party origin without a trailing slash.
	origin string
	// stateURI is the path of the OAuth state endpoint.
	stateURI string
	// httpClient is the HTTP client for making requests.
	httpClient *http.Client
	// jar keeps the session cookies the backend sets.
	jar http.CookieJar
}

const (
	// DefaultStateURI is the default path of the OAuth state endpoint.
	DefaultStateURI = "/api/oauth/state"
	// statusURI is the path of the public status endpoint.
	statusURI = "/api/status"
	// maxBodySize bounds how much of a response body is read.
	maxBodySize = 1 << 20
)

// NewClient creates a client for the relying party at origin.
// An empty stateURI falls back to DefaultStateURI.
func NewClient(origin, stateURI string, userAgentProvider utils.UserAgentProvider) (*ClientImpl, error) {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrigin, origin)
	}

	if stateURI == "" {
		stateURI = DefaultStateURI
	}

	if !strings.HasPrefix(stateURI, "/") {
		stateURI = "/" + stateURI
	}

	if userAgentProvider == nil {
		userAgentProvider = utils.NewFixedUserAgentProvider(utils.DefaultUserAgent)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	var maxLogLength uint64
	if logger.IsDebugLevel() {
		maxLogLength = http_transport.DefaultMaxLogLength
	}

	transport := http_transport.NewHeadersInjector(
		http_transport.NewLogTransport(http.DefaultTransport, maxLogLength),
		userAgentProvider,
	)

	return &ClientImpl{
		origin:   strings.TrimRight(origin, "/"),
		stateURI: stateURI,
		httpClient: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   http_transport.DefaultTimeout,
		},
		jar: jar,
	}, nil
}

// Origin returns the relying-party origin.
func (c *ClientImpl) Origin() string {
	return c.origin
}

// FetchOAuthState asks the backend for a state token.
// The returned cookies carry the server-side session the token is bound to;
// they must reach the browser before the callback lands.
func (c *ClientImpl) FetchOAuthState(ctx context.Context) (string, []cookie.Cookie, error) {
	body, err := c.fetch(ctx, c.stateURI)
	if err != nil {
		return "", nil, fmt.Errorf("fetch OAuth state: %w", err)
	}

	if err = checkSuccess(body); err != nil {
		return "", nil, fmt.Errorf("fetch OAuth state: %w", err)
	}

	state := gjson.GetBytes(body, "data").String()
	if state == "" {
		return "", nil, ErrEmptyState
	}

	originURL, err := url.Parse(c.origin)
	if err != nil {
		return "", nil, err
	}

	cookies := cookie.FromHTTP(c.jar.Cookies(originURL), c.origin)

	logger.DebugKV(ctx, "OAuth state received", "origin", c.origin, "cookies", len(cookies))

	return state, cookies, nil
}

// FetchClientIDs reads the OAuth client ids from the status endpoint.
func (c *ClientImpl) FetchClientIDs(ctx context.Context) (*ClientIDs, error) {
	body, err := c.fetch(ctx, statusURI)
	if err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}

	if err = checkSuccess(body); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}

	data := gjson.GetBytes(body, "data")

	return &ClientIDs{
		GitHub:  data.Get("github_client_id").String(),
		LinuxDo: data.Get("linuxdo_client_id").String(),
	}, nil
}

func (c *ClientImpl) fetch(ctx context.Context, uri string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.origin+uri, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return io.ReadAll(io.LimitReader(response.Body, maxBodySize))
}

func checkSuccess(body []byte) error {
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("%w: malformed JSON", ErrUnsuccessful)
	}

	result := gjson.ParseBytes(body)
	if !result.Get("success").Bool() {
		return fmt.Errorf("%w: %s", ErrUnsuccessful, result.Get("message").String())
	}

	return nil
}
