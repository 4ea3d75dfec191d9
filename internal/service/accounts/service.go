package accounts

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/oshokin/newapi-signin/internal/client/newapi"
	"github.com/oshokin/newapi-signin/internal/config"
	"github.com/oshokin/newapi-signin/internal/logger"
	"github.com/oshokin/newapi-signin/internal/secret"
	"github.com/oshokin/newapi-signin/internal/service/signin"
	"github.com/oshokin/newapi-signin/internal/utils"
)

// Service signs in configured accounts.
type Service interface {
	// SignInAccounts signs in every account with every configured identity provider, sequentially.
	SignInAccounts(ctx context.Context, accounts []config.AccountConfig) *Report
	// PrintSummary prints a formatted summary of the report.
	PrintSummary(ctx context.Context, report *Report)
}

// AuthenticatorFactory builds an authenticator that answers second-factor requests from secrets.
type AuthenticatorFactory func(secrets secret.Channel) Authenticator

// ClientFactory creates a client for a relying party.
type ClientFactory func(provider config.RelyingPartyConfig) (newapi.Client, error)

// ServiceImpl implements Service.
type ServiceImpl struct {
	// providers are the configured relying parties by name.
	providers map[string]config.RelyingPartyConfig
	// newAuthenticator builds the sign-in driver of one account.
	newAuthenticator AuthenticatorFactory
	// newClient builds relying-party clients.
	newClient ClientFactory
	// prompt asks a human for codes after every other channel; nil disables prompting.
	prompt secret.Channel
	// progress receives the progress bar; nil hides it.
	progress io.Writer
	// maxPause bounds the random pause between two sign-ins.
	maxPause time.Duration
	// clients caches relying-party clients by provider name.
	clients map[string]newapi.Client
	// discovered caches client ids read from the status endpoint by provider name.
	discovered map[string]*newapi.ClientIDs
	// now returns the current time.
	now func() time.Time
}

// Option configures a ServiceImpl.
type Option func(*ServiceImpl)

// WithPrompt adds a last-resort human channel for one-time codes.
func WithPrompt(prompt secret.Channel) Option {
	return func(s *ServiceImpl) {
		s.prompt = prompt
	}
}

// WithProgress renders a progress bar to w.
func WithProgress(w io.Writer) Option {
	return func(s *ServiceImpl) {
		s.progress = w
	}
}

// WithPause pauses for a random duration up to maxPause between two sign-ins.
func WithPause(maxPause time.Duration) Option {
	return func(s *ServiceImpl) {
		s.maxPause = maxPause
	}
}

const (
	// minAccountPause is the lower bound of the pause between two sign-ins.
	minAccountPause = time.Second
)

// NewService creates the account service.
func NewService(
	providers map[string]config.RelyingPartyConfig,
	newAuthenticator AuthenticatorFactory,
	newClient ClientFactory,
	opts ...Option,
) *ServiceImpl {
	s := &ServiceImpl{
		providers:        providers,
		newAuthenticator: newAuthenticator,
		newClient:        newClient,
		clients:          make(map[string]newapi.Client),
		discovered:       make(map[string]*newapi.ClientIDs),
		now:              time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SignInAccounts signs in every account with every configured identity provider, sequentially.
// A canceled context stops the loop; results collected so far are kept.
func (s *ServiceImpl) SignInAccounts(ctx context.Context, accounts []config.AccountConfig) *Report {
	report := &Report{GeneratedAt: s.now()}

	total := 0
	for _, account := range accounts {
		total += len(account.Methods())
	}

	bar := s.newProgressBar(total)

	defer func() {
		_ = bar.Finish()

		report.Duration = s.now().Sub(report.GeneratedAt)
		report.Interrupted = ctx.Err() != nil
	}()

	for _, account := range accounts {
		for _, method := range account.Methods() {
			if ctx.Err() != nil {
				logger.Warn(ctx, "Sign-in interrupted, remaining accounts are skipped")

				return report
			}

			if len(report.Results) > 0 {
				s.pause(ctx)
			}

			result := s.signIn(ctx, account, method)
			report.Results = append(report.Results, result)

			_ = bar.Add(1)
		}
	}

	return report
}

func (s *ServiceImpl) signIn(ctx context.Context, account config.AccountConfig, method string) AccountResult {
	ctx = logger.WithKV(ctx, "account", account.Name, "site", account.Provider, "method", method)
	started := s.now()

	result := AccountResult{
		Account:  account.Name,
		Provider: account.Provider,
		Method:   method,
	}

	defer func() {
		result.Duration = s.now().Sub(started)
	}()

	logger.Infof(ctx, "Signing in '%s' at '%s' with %s", account.Name, account.Provider, method)

	request, err := s.prepare(ctx, account, method, &result)
	if err != nil {
		logger.Errorf(ctx, "Failed to prepare sign-in: %v", err)

		return result
	}

	credentials := account.Credentials(method)

	secrets, err := s.secrets(credentials)
	if err != nil {
		result.fail(stagePrepare, kindSetup, err)
		logger.Errorf(ctx, "Failed to prepare second factor: %v", err)

		return result
	}

	result.apply(s.newAuthenticator(secrets).SignIn(ctx, *request))

	switch result.Status {
	case StatusAuthorized:
		logger.Infof(ctx, "Signed in as user %s with %d cookies", result.UserID, len(result.Cookies))
	case StatusCodeOnly:
		logger.Warn(ctx, "Only the OAuth code was obtained, the check-in client has to exchange it")
	case StatusFailed:
		logger.Errorf(ctx, "Sign-in failed at %s (%s): %s", result.Stage, result.Kind, result.Error)
	}

	return result
}

// prepare builds the driver request; failures are recorded in result.
func (s *ServiceImpl) prepare(
	ctx context.Context,
	account config.AccountConfig,
	method string,
	result *AccountResult,
) (*signin.Request, error) {
	provider, ok := s.providers[account.Provider]
	if !ok {
		err := fmt.Errorf("%w: '%s'", ErrUnknownProvider, account.Provider)
		result.fail(stagePrepare, kindSetup, err)

		return nil, err
	}

	result.Origin = provider.Origin

	endpoints, ok := signin.Endpoints(method, provider.Origin)
	if !ok {
		err := fmt.Errorf("%w: '%s'", ErrUnsupportedMethod, method)
		result.fail(stagePrepare, kindSetup, err)

		return nil, err
	}

	client, err := s.client(account.Provider, provider)
	if err != nil {
		result.fail(stagePrepare, kindSetup, err)

		return nil, err
	}

	clientID, err := s.clientID(ctx, account.Provider, provider, client, method)
	if err != nil {
		result.fail(stagePrepare, kindSetup, err)

		return nil, err
	}

	state, cookies, err := client.FetchOAuthState(ctx)
	if err != nil {
		result.fail(stageOAuthState, kindSetup, err)

		return nil, err
	}

	credentials := account.Credentials(method)

	return &signin.Request{
		Account:   account.Name,
		Endpoints: endpoints,
		Credentials: signin.Credentials{
			Username: credentials.Username,
			Password: credentials.Password,
		},
		ClientID:        clientID,
		State:           state,
		ExternalCookies: cookies,
	}, nil
}

func (s *ServiceImpl) client(name string, provider config.RelyingPartyConfig) (newapi.Client, error) {
	if client, ok := s.clients[name]; ok {
		return client, nil
	}

	client, err := s.newClient(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for '%s': %w", name, err)
	}

	s.clients[name] = client

	return client, nil
}

// clientID returns the configured client id or discovers it once per relying party.
func (s *ServiceImpl) clientID(
	ctx context.Context,
	name string,
	provider config.RelyingPartyConfig,
	client newapi.Client,
	method string,
) (string, error) {
	if clientID := provider.ClientID(method); clientID != "" {
		return clientID, nil
	}

	ids, ok := s.discovered[name]
	if !ok {
		var err error

		ids, err = client.FetchClientIDs(ctx)
		if err != nil {
			return "", fmt.Errorf("%w for %s: %w", ErrNoClientID, method, err)
		}

		s.discovered[name] = ids
	}

	discovered := config.RelyingPartyConfig{GitHubClientID: ids.GitHub, LinuxDoClientID: ids.LinuxDo}
	if clientID := discovered.ClientID(method); clientID != "" {
		logger.Debugf(ctx, "Discovered %s client id %s", method, clientID)

		return clientID, nil
	}

	return "", fmt.Errorf("%w for %s: '%s' does not offer it", ErrNoClientID, method, name)
}

// secrets chains the account's code sources: a fixed code, the TOTP seed, then the prompt.
func (s *ServiceImpl) secrets(credentials *config.CredentialsConfig) (secret.Channel, error) {
	var links []secret.Channel

	if credentials.OTP != "" {
		links = append(links, secret.NewStatic(map[string]string{signin.SecretOTP: credentials.OTP}))
	}

	if credentials.TOTPSecret != "" {
		totp, err := secret.NewTOTP(credentials.TOTPSecret, signin.SecretOTP)
		if err != nil {
			return nil, err
		}

		links = append(links, totp)
	}

	if s.prompt != nil {
		links = append(links, s.prompt)
	}

	return secret.NewChain(links...), nil
}

func (s *ServiceImpl) pause(ctx context.Context) {
	if s.maxPause <= minAccountPause {
		return
	}

	timer := time.NewTimer(utils.RandomDuration(minAccountPause, s.maxPause))
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (s *ServiceImpl) newProgressBar(total int) *progressbar.ProgressBar {
	if s.progress == nil || total <= 1 {
		return progressbar.DefaultSilent(int64(total))
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(s.progress),
		progressbar.OptionSetDescription("Signing in"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(s.progress)
		}),
	)
}
