package signin_test

import (
	"context"
	"errors"
	"sync"

	"github.com/oshokin/newapi-signin/internal/cookie"
	"github.com/oshokin/newapi-signin/internal/service/signin"
	"github.com/oshokin/newapi-signin/internal/session"
)

// fakePage simulates a provider and a relying party inside one browser context.
// Hooks run with the lock held and change fields directly.
type fakePage struct {
	mu sync.Mutex

	seed     *session.Snapshot
	url      string
	present  map[string]bool
	storage  map[string]string
	cookies  []cookie.Cookie
	navErr   error
	closeCnt int

	// renderHung makes diagnostics block until their context ends.
	renderHung bool

	onNavigate func(p *fakePage, target string)
	onClick    func(p *fakePage, selector string)
	onFill     func(p *fakePage, selector, value string)

	navigations []string
	visited     []string
	fills       map[string]string
	clicks      []string
}

func newFakePage() *fakePage {
	return &fakePage{
		url:     "about:blank",
		present: make(map[string]bool),
		storage: make(map[string]string),
		fills:   make(map[string]string),
	}
}

func (p *fakePage) Navigate(_ context.Context, target string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.navigations = append(p.navigations, target)

	if p.navErr != nil {
		return p.navErr
	}

	p.goTo(target)

	if p.onNavigate != nil {
		p.onNavigate(p, target)
	}

	return nil
}

func (p *fakePage) URL() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.url, nil
}

func (p *fakePage) VisitedURLs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.visited...)
}

// goTo commits a navigation; the caller holds the lock.
func (p *fakePage) goTo(target string) {
	p.url = target
	p.visited = append(p.visited, target)
}

func (p *fakePage) Has(_ context.Context, selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.present[selector], nil
}

func (p *fakePage) Fill(_ context.Context, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.present[selector] {
		return errors.New("element not found: " + selector)
	}

	p.fills[selector] = value

	if p.onFill != nil {
		p.onFill(p, selector, value)
	}

	return nil
}

func (p *fakePage) Click(_ context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.present[selector] {
		return errors.New("element not found: " + selector)
	}

	p.clicks = append(p.clicks, selector)

	if p.onClick != nil {
		p.onClick(p, selector)
	}

	return nil
}

func (p *fakePage) LocalStorageItem(_ context.Context, key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	value, ok := p.storage[key]

	return value, ok, nil
}

func (p *fakePage) Cookies(context.Context) ([]cookie.Cookie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]cookie.Cookie(nil), p.cookies...), nil
}

func (p *fakePage) Snapshot(context.Context) (*session.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := &session.Snapshot{Cookies: append([]cookie.Cookie(nil), p.cookies...)}

	if user, ok := p.storage["user"]; ok {
		snapshot.Origins = []session.OriginStorage{{
			Origin:       testOrigin,
			LocalStorage: []session.StorageItem{{Name: "user", Value: user}},
		}}
	}

	return snapshot, nil
}

func (p *fakePage) Screenshot(ctx context.Context) ([]byte, error) {
	if p.renderHung {
		<-ctx.Done()

		return nil, ctx.Err()
	}

	return []byte("png"), nil
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	if p.renderHung {
		<-ctx.Done()

		return "", ctx.Err()
	}

	return "<html></html>", nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closeCnt++

	return nil
}

func (p *fakePage) set(fn func(p *fakePage)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fn(p)
}

func (p *fakePage) get(fn func(p *fakePage)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fn(p)
}

// fakeBrowser hands out prepared pages and remembers the seeds it got.
type fakeBrowser struct {
	mu    sync.Mutex
	pages []*fakePage
	seeds []*session.Snapshot
	err   error
}

func (b *fakeBrowser) Open(_ context.Context, seed *session.Snapshot) (signin.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seeds = append(b.seeds, seed)

	if b.err != nil {
		return nil, b.err
	}

	if len(b.pages) == 0 {
		return nil, errors.New("no page prepared")
	}

	page := b.pages[0]
	b.pages = b.pages[1:]
	page.seed = seed

	return page, nil
}
