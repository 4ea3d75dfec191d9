package signin

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/oshokin/newapi-signin/internal/cookie"
	"github.com/oshokin/newapi-signin/internal/diagnostics"
	"github.com/oshokin/newapi-signin/internal/logger"
	"github.com/oshokin/newapi-signin/internal/session"
)

// flow is the state of a single sign-in.
type flow struct {
	driver       *Driver
	req          Request
	key          string
	authorizeURL string

	page        Page
	callbackURL string
}

func (f *flow) execute(ctx context.Context) Result {
	cached, restored := f.loadSnapshot(ctx)

	failed := f.run(ctx, StageInit, func(ctx context.Context) error {
		page, err := f.driver.browser.Open(ctx, seedSnapshot(cached, f.req.ExternalCookies))
		if err != nil {
			return fmt.Errorf("failed to open browser context: %w", err)
		}

		f.page = page

		return nil
	})
	if failed != nil {
		return failed
	}

	defer f.closePage(ctx)

	if len(f.req.ExternalCookies) > 0 {
		logger.Debugf(ctx, "Seeded %d relying-party cookies", len(f.req.ExternalCookies))
	}

	authenticated := false

	if restored {
		authenticated = f.probe(ctx)
	} else {
		logger.Info(ctx, "No cached session, starting fresh")
	}

	if !authenticated {
		for _, step := range []struct {
			stage Stage
			fn    func(context.Context) error
		}{
			{StageLogin, f.login},
			{StageSecondFactor, f.secondFactor},
			{StageChallenge, f.challenge},
		} {
			if failed = f.run(ctx, step.stage, step.fn); failed != nil {
				return failed
			}
		}

		f.saveSnapshot(ctx)

		if failed = f.run(ctx, StageAuthorize, f.openAuthorize); failed != nil {
			return failed
		}
	}

	if failed = f.run(ctx, StageConsent, f.consent); failed != nil {
		return failed
	}

	if failed = f.run(ctx, StageCallback, f.awaitCallback); failed != nil {
		return failed
	}

	var result Result

	failed = f.run(ctx, StageIdentity, func(ctx context.Context) error {
		var err error

		result, err = f.identity(ctx)

		return err
	})
	if failed != nil {
		return failed
	}

	return result
}

// run executes one stage and converts any error or panic into a diagnosed failure.
func (f *flow) run(ctx context.Context, stage Stage, fn func(context.Context) error) (failed *Failed) {
	defer func() {
		if r := recover(); r != nil {
			failed = f.fail(ctx, stage, KindEngine, panicError(r))
		}
	}()

	logger.Debugf(ctx, "Entering stage %s", stage)

	err := fn(ctx)
	if err == nil {
		return nil
	}

	kind := KindEngine

	var tagged *kindError

	switch {
	case errors.As(err, &tagged):
		kind = tagged.kind
	case ctx.Err() != nil:
		kind = KindCanceled
	}

	return f.fail(ctx, stage, kind, err)
}

func (f *flow) fail(ctx context.Context, stage Stage, kind Kind, err error) *Failed {
	if kind != KindCanceled {
		f.capture(ctx, fmt.Sprintf("%s_%s", stage, kind))
	}

	return &Failed{Stage: stage, Kind: kind, Err: err}
}

// capture hands the page to the diagnostics sink; it never fails the flow.
func (f *flow) capture(ctx context.Context, reason string) {
	if f.page == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.driver.timeouts.Capture)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Debugf(ctx, "Diagnostics capture panic recovered: %v", r)
		}
	}()

	f.driver.sink.Capture(ctx, f.page, diagnostics.Capture{
		Account:  f.req.Account,
		Provider: f.req.Endpoints.Name,
		Reason:   reason,
	})
}

func (f *flow) closePage(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf(ctx, "Page close panic recovered: %v", r)
		}
	}()

	if err := f.page.Close(); err != nil {
		logger.Debugf(ctx, "Page close error: %v", err)
	}
}

func (f *flow) loadSnapshot(ctx context.Context) (*session.Snapshot, bool) {
	if f.driver.cache == nil {
		return nil, false
	}

	snapshot, found, err := f.driver.cache.Load(ctx, f.key)
	if err != nil {
		logger.Warnf(ctx, "Failed to load cached session %s: %v", f.key, err)

		return nil, false
	}

	if !found || snapshot.IsEmpty() {
		return nil, false
	}

	logger.Infof(ctx, "Found cached session %s, restoring it", f.key)

	return snapshot, true
}

func (f *flow) saveSnapshot(ctx context.Context) {
	if f.driver.cache == nil {
		return
	}

	snapshot, err := f.page.Snapshot(ctx)
	if err != nil {
		logger.Warnf(ctx, "Failed to capture session state: %v", err)

		return
	}

	if err = f.driver.cache.Save(ctx, f.key, snapshot); err != nil {
		logger.Warnf(ctx, "Failed to save session state: %v", err)

		return
	}

	logger.Infof(ctx, "Session state saved to cache %s", f.key)
}

// callbackQuery returns the query of the callback URL, or of the current URL when it has no code.
func (f *flow) callbackQuery() url.Values {
	candidates := []string{f.callbackURL}

	if current, err := f.page.URL(); err == nil {
		candidates = append(candidates, current)
	}

	for _, candidate := range candidates {
		parsed, err := url.Parse(candidate)
		if err != nil {
			continue
		}

		if query := parsed.Query(); query.Get("code") != "" {
			return query
		}
	}

	return nil
}

// seedSnapshot combines the cached snapshot with cookies negotiated for this run.
// The negotiated cookies replace cached ones occupying the same slot.
func seedSnapshot(cached *session.Snapshot, external []cookie.Cookie) *session.Snapshot {
	if cached.IsEmpty() && len(external) == 0 {
		return nil
	}

	seed := &session.Snapshot{}

	if cached != nil {
		seed.Cookies = cookie.Merge(cached.Cookies, external)
		seed.Origins = append(seed.Origins, cached.Origins...)
	} else {
		seed.Cookies = cookie.Merge(nil, external)
	}

	return seed
}
