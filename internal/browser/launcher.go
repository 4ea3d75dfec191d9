package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/oshokin/newapi-signin/internal/logger"
	"github.com/oshokin/newapi-signin/internal/session"
	"github.com/oshokin/newapi-signin/internal/utils"
)

// ErrClosed is returned when a session is requested from a closed launcher.
var ErrClosed = errors.New("browser is closed")

// Options configures the Chrome process.
type Options struct {
	// Headless hides the browser window.
	Headless bool
	// BinPath overrides Chrome discovery.
	BinPath string
	// NavigationTimeout bounds navigation and element lookup.
	NavigationTimeout time.Duration
	// UserAgent supplies the user agent of every page; nil keeps Chrome's own.
	UserAgent utils.UserAgentProvider
}

// Launcher owns a Chrome process.
type Launcher struct {
	opts    Options
	browser *rod.Browser
	tempDir string

	mu     sync.Mutex
	closed bool
}

// Launch starts Chrome with a temporary profile and connects to it.
// A system Chrome is preferred; otherwise rod downloads Chromium.
func Launch(ctx context.Context, opts Options) (*Launcher, error) {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = DefaultNavigationTimeout
	}

	tempDir, err := os.MkdirTemp("", "newapi-signin-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary user data directory: %w", err)
	}

	logger.Debugf(ctx, "Using temporary profile directory: %s", tempDir)

	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		UserDataDir(tempDir)

	binPath := opts.BinPath
	if binPath == "" {
		if found, exists := launcher.LookPath(); exists {
			binPath = found
		}
	}

	if binPath != "" {
		logger.Debugf(ctx, "Using Chrome installation at: %s", binPath)

		l = l.Bin(binPath)
	} else {
		logger.Info(ctx, "System Chrome not found, downloading Chromium")
	}

	controlURL, err := l.Launch()
	if err != nil {
		removeProfile(ctx, tempDir)

		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	logger.Debugf(ctx, "Browser launched at: %s", controlURL)

	browser := rod.New().ControlURL(controlURL)

	if logger.IsDebugLevel() {
		logger.Debug(ctx, "Debug mode enabled - enabling browser trace and slow motion")

		browser = browser.Trace(true).SlowMotion(slowMotionDelay)
	}

	if err = browser.Connect(); err != nil {
		l.Kill()
		removeProfile(ctx, tempDir)

		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Launcher{
		opts:    opts,
		browser: browser,
		tempDir: tempDir,
	}, nil
}

// Open creates an isolated incognito session seeded from snapshot.
// The caller must Close the session.
func (l *Launcher) Open(ctx context.Context, seed *session.Snapshot) (*Session, error) {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}

	incognito, err := l.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("failed to create incognito context: %w", err)
	}

	page, err := stealth.Page(incognito)
	if err != nil {
		_ = incognito.Close()

		return nil, fmt.Errorf("failed to create stealth page: %w", err)
	}

	s := &Session{
		browser:    incognito,
		page:       page,
		navTimeout: l.opts.NavigationTimeout,
	}

	if err = s.prepare(ctx, l.opts.UserAgent, seed); err != nil {
		_ = s.Close()

		return nil, err
	}

	s.watchNavigation()

	return s, nil
}

// Close shuts Chrome down and removes the temporary profile.
func (l *Launcher) Close(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	l.closed = true

	if err := l.browser.Close(); err != nil {
		logger.Debugf(ctx, "Browser close error (expected): %v", err)
	}

	time.Sleep(cleanupDelay)
	removeProfile(ctx, l.tempDir)
}

func (s *Session) prepare(ctx context.Context, userAgent utils.UserAgentProvider, seed *session.Snapshot) error {
	if userAgent != nil {
		if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: userAgent.GetUserAgent(),
		}); err != nil {
			return fmt.Errorf("failed to set user agent: %w", err)
		}
	}

	if seed.IsEmpty() {
		return nil
	}

	if len(seed.Cookies) > 0 {
		if err := s.browser.SetCookies(toCookieParams(seed.Cookies)); err != nil {
			return fmt.Errorf("failed to seed cookies: %w", err)
		}
	}

	script, err := storageSeedScript(seed.Origins)
	if err != nil {
		return err
	}

	if script != "" {
		if _, err = s.page.EvalOnNewDocument(script); err != nil {
			return fmt.Errorf("failed to seed web storage: %w", err)
		}
	}

	s.seed = seed.Origins

	logger.Debugf(ctx, "Seeded browser session with %d cookies and %d origins", len(seed.Cookies), len(seed.Origins))

	return nil
}

func removeProfile(ctx context.Context, dir string) {
	if dir == "" {
		return
	}

	if err := os.RemoveAll(dir); err != nil {
		// Fails on Windows while Chrome still holds locks.
		logger.Debugf(ctx, "Could not clean up temp directory %s: %v", dir, err)
	}
}
