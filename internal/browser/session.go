package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/oshokin/newapi-signin/internal/cookie"
	"github.com/oshokin/newapi-signin/internal/logger"
	"github.com/oshokin/newapi-signin/internal/session"
)

// Session is one incognito browser context with a single page.
type Session struct {
	browser    *rod.Browser
	page       *rod.Page
	navTimeout time.Duration
	seed       []session.OriginStorage

	mu        sync.Mutex
	visited   []string
	stopWatch context.CancelFunc
}

// maxVisitedURLs caps the navigation history of a session.
const maxVisitedURLs = 64

// watchNavigation records every URL the main frame commits, in-document route changes included.
func (s *Session) watchNavigation() {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopWatch = cancel

	wait := s.page.Context(ctx).EachEvent(
		func(e *proto.PageFrameNavigated) {
			if e.Frame.ParentID == "" {
				s.visit(e.Frame.URL)
			}
		},
		func(e *proto.PageNavigatedWithinDocument) {
			if e.FrameID == s.page.FrameID {
				s.visit(e.URL)
			}
		},
	)

	go wait()
}

func (s *Session) visit(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.visited = append(s.visited, url)
	if len(s.visited) > maxVisitedURLs {
		s.visited = s.visited[len(s.visited)-maxVisitedURLs:]
	}
}

// VisitedURLs returns the URLs the main frame committed, oldest first.
func (s *Session) VisitedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.visited...)
}

// Navigate opens url and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, s.navTimeout)
	defer cancel()

	page := s.page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for %s to load: %w", url, err)
	}

	return nil
}

// URL returns the current page URL.
func (s *Session) URL() (string, error) {
	page := s.page.Timeout(s.navTimeout)
	defer page.CancelTimeout()

	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("failed to get page info: %w", err)
	}

	return info.URL, nil
}

// Has reports whether selector currently matches an element, without waiting.
func (s *Session) Has(ctx context.Context, selector string) (bool, error) {
	has, _, err := s.page.Context(ctx).Has(selector)
	if err != nil {
		return false, fmt.Errorf("failed to query %s: %w", selector, err)
	}

	return has, nil
}

// Fill replaces the value of the input matched by selector.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	return s.withElement(ctx, selector, func(el *rod.Element) error {
		if err := el.SelectAllText(); err != nil {
			return err
		}

		return el.Input(value)
	})
}

// Click presses the element matched by selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	return s.withElement(ctx, selector, func(el *rod.Element) error {
		return el.Click(proto.InputMouseButtonLeft, 1)
	})
}

// LocalStorageItem returns localStorage[key] of the current origin.
func (s *Session) LocalStorageItem(ctx context.Context, key string) (string, bool, error) {
	result, err := s.page.Context(ctx).Eval(`(key) => window.localStorage.getItem(key)`, key)
	if err != nil {
		return "", false, fmt.Errorf("failed to read localStorage[%s]: %w", key, err)
	}

	if result.Value.Nil() {
		return "", false, nil
	}

	return result.Value.Str(), true, nil
}

// Cookies returns every cookie of the incognito context.
func (s *Session) Cookies(ctx context.Context) ([]cookie.Cookie, error) {
	ctx, cancel := context.WithTimeout(ctx, s.navTimeout)
	defer cancel()

	cookies, err := s.browser.Context(ctx).GetCookies()
	if err != nil {
		return nil, fmt.Errorf("failed to get cookies: %w", err)
	}

	return fromNetworkCookies(cookies), nil
}

// Snapshot captures cookies plus the storage of the current origin.
// Storage of other origins is carried over from the seed.
func (s *Session) Snapshot(ctx context.Context) (*session.Snapshot, error) {
	cookies, err := s.Cookies(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &session.Snapshot{
		Cookies: cookies,
		Origins: append([]session.OriginStorage(nil), s.seed...),
	}

	result, err := s.page.Context(ctx).Eval(storageDumpScript)
	if err != nil {
		logger.Debugf(ctx, "Could not read web storage, keeping seeded storage: %v", err)

		return snapshot, nil
	}

	if storage, ok := parseStorageDump(result.Value.Str()); ok {
		snapshot.PutOrigin(storage)
	}

	return snapshot, nil
}

// Screenshot captures the visible page as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.navTimeout)
	defer cancel()

	return s.page.Context(ctx).Screenshot(false, nil)
}

// HTML returns the page markup.
func (s *Session) HTML(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.navTimeout)
	defer cancel()

	return s.page.Context(ctx).HTML()
}

// Close disposes the page and its incognito context.
func (s *Session) Close() error {
	if s.stopWatch != nil {
		s.stopWatch()
	}

	page := s.page.Timeout(s.navTimeout)
	defer page.CancelTimeout()

	pageErr := page.Close()

	if err := s.browser.Close(); err != nil {
		return fmt.Errorf("failed to dispose browser context: %w", err)
	}

	return pageErr
}

func (s *Session) withElement(ctx context.Context, selector string, action func(el *rod.Element) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.navTimeout)
	defer cancel()

	page := s.page.Context(ctx)

	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("failed to find %s: %w", selector, err)
	}

	s.simulateHumanBehavior(ctx, page)

	if err = el.ScrollIntoView(); err != nil {
		logger.Debugf(ctx, "Could not scroll %s into view: %v", selector, err)
	}

	if err = action(el); err != nil {
		return fmt.Errorf("failed to interact with %s: %w", selector, err)
	}

	return nil
}
