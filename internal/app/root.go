package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/oshokin/newapi-signin/internal/browser"
	"github.com/oshokin/newapi-signin/internal/client/newapi"
	"github.com/oshokin/newapi-signin/internal/config"
	"github.com/oshokin/newapi-signin/internal/diagnostics"
	"github.com/oshokin/newapi-signin/internal/logger"
	"github.com/oshokin/newapi-signin/internal/secret"
	"github.com/oshokin/newapi-signin/internal/service/accounts"
	"github.com/oshokin/newapi-signin/internal/service/signin"
	"github.com/oshokin/newapi-signin/internal/session"
	"github.com/oshokin/newapi-signin/internal/utils"
)

// ErrAllSignInsFailed is returned when no sign-in of the run succeeded.
var ErrAllSignInsFailed = errors.New("all sign-ins failed")

// ExecuteSignInCommand is the entry point of the signin command.
// It signs in the named accounts, or every account when none is named,
// writes the results file and exits with an error when nothing succeeded.
func ExecuteSignInCommand(ctx context.Context, cfg *config.Config, accountNames []string) {
	ctx = logger.WithKV(ctx, "run", uuid.NewString())

	if err := runSignIn(ctx, cfg, accountNames); err != nil {
		logger.Fatalf(ctx, "Sign-in run failed: %v", err)
	}
}

func runSignIn(ctx context.Context, cfg *config.Config, accountNames []string) error {
	selected, err := cfg.SelectAccounts(accountNames)
	if err != nil {
		return err
	}

	logger.Infof(ctx, "Signing in %d account(s)", len(selected))

	store, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}

	defer closeStore()

	cache, err := session.NewCache(store)
	if err != nil {
		return fmt.Errorf("failed to create session cache: %w", err)
	}

	userAgent := utils.NewFixedUserAgentProvider(cfg.UserAgent)

	launcher, err := browser.Launch(ctx, browser.Options{
		Headless:          cfg.Headless,
		BinPath:           cfg.ChromePath,
		NavigationTimeout: cfg.ParsedNavigationTimeout,
		UserAgent:         userAgent,
	})
	if err != nil {
		return err
	}

	defer launcher.Close(context.WithoutCancel(ctx))

	service := accounts.NewService(
		cfg.ParsedProviders,
		newAuthenticatorFactory(launcher, cache, cfg),
		func(provider config.RelyingPartyConfig) (newapi.Client, error) {
			client, clientErr := newapi.NewClient(provider.Origin, provider.AuthStatePath, userAgent)
			if clientErr != nil {
				return nil, clientErr
			}

			return client, nil
		},
		serviceOptions(cfg, os.Stdin, os.Stderr, isTerminal(os.Stdin))...,
	)

	report := service.SignInAccounts(ctx, selected)
	service.PrintSummary(ctx, report)

	if err = accounts.WriteReport(cfg.OutputPath, report); err != nil {
		logger.Errorf(ctx, "Failed to write results to '%s': %v", cfg.OutputPath, err)
	} else {
		logger.Infof(ctx, "Results written to '%s'", cfg.OutputPath)
	}

	if !report.AnySucceeded() {
		return ErrAllSignInsFailed
	}

	return nil
}

// newAuthenticatorFactory builds one driver per account over the shared browser and cache.
func newAuthenticatorFactory(
	launcher *browser.Launcher,
	cache *session.Cache,
	cfg *config.Config,
) accounts.AuthenticatorFactory {
	pages := signin.BrowserFunc(func(ctx context.Context, seed *session.Snapshot) (signin.Page, error) {
		page, err := launcher.Open(ctx, seed)
		if err != nil {
			return nil, err
		}

		return page, nil
	})

	sink := diagnostics.NewFileSink(cfg.ScreenshotsDir, cfg.PageDumpsDir)

	return func(secrets secret.Channel) accounts.Authenticator {
		return signin.NewDriver(pages, cache, secrets, sink, signin.WithTimeouts(cfg.ParsedTimeouts))
	}
}

func serviceOptions(cfg *config.Config, in io.Reader, out io.Writer, interactive bool) []accounts.Option {
	opts := []accounts.Option{accounts.WithPause(cfg.ParsedMaxAccountPause)}

	// Nobody answers a prompt on a pipe or in CI.
	if cfg.PromptSecrets && interactive {
		opts = append(opts, accounts.WithPrompt(secret.NewPrompt(in, out)))
	}

	// The bar would be buried under debug output.
	if logger.Level() == zapcore.InfoLevel {
		opts = append(opts, accounts.WithProgress(out))
	}

	return opts
}

// isTerminal reports whether in is an interactive terminal.
func isTerminal(in io.Reader) bool {
	file, ok := in.(*os.File)

	return ok && term.IsTerminal(int(file.Fd())) //nolint:gosec // File descriptors fit in int.
}

// newSessionStore opens the configured snapshot store and returns its closer.
func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		client, err := session.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}

		logger.Debugf(ctx, "Using redis session store at %s", client.Options().Addr)

		closeStore := func() {
			if closeErr := client.Close(); closeErr != nil {
				logger.Warnf(ctx, "Failed to close redis client: %v", closeErr)
			}
		}

		return session.NewRedisStore(client, cfg.RedisPrefix, cfg.ParsedRedisTTL), closeStore, nil
	default:
		logger.Debugf(ctx, "Using file session store in '%s'", cfg.CacheDir)

		return session.NewFileStore(cfg.CacheDir), func() {}, nil
	}
}
