package signin

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/oshokin/newapi-signin/internal/cookie"
	"github.com/oshokin/newapi-signin/internal/logger"
	"github.com/oshokin/newapi-signin/internal/secret"
)

// SecretOTP is the secret name requested for a second factor.
const SecretOTP = "OTP"

// probe opens the authorize URL with the restored session and reports whether it is still signed in.
// Every error here means "log in again".
func (f *flow) probe(ctx context.Context) (authenticated bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warnf(ctx, "Cached session check panicked, logging in again: %v", r)

			authenticated = false
		}
	}()

	endpoints := f.req.Endpoints

	logger.Infof(ctx, "Checking cached session at %s", f.authorizeURL)

	if err := f.page.Navigate(ctx, f.authorizeURL); err != nil {
		logger.Warnf(ctx, "Failed to check cached session: %v", err)

		return false
	}

	current, err := f.page.URL()
	if err != nil {
		logger.Warnf(ctx, "Failed to check cached session: %v", err)

		return false
	}

	logger.Debugf(ctx, "Cached session check landed on %s", current)

	if endpoints.InOrigin(current) {
		logger.Info(ctx, "Already signed in via cached session, redirected to the relying party")

		return true
	}

	if endpoints.IsChallenge(current) {
		if err = f.waitChallenge(ctx); err != nil {
			return false
		}
	}

	approvable, err := f.page.Has(ctx, endpoints.ApproveSelector)
	if err != nil || !approvable {
		logger.Info(ctx, "Cached session expired, need to log in again")

		return false
	}

	logger.Info(ctx, "Already signed in via cached session, consent screen is shown")

	return true
}

// login submits the credentials and resolves the optional interstitial.
func (f *flow) login(ctx context.Context) error {
	endpoints := f.req.Endpoints

	logger.Infof(ctx, "Logging in to %s", endpoints.LoginURL)

	if err := f.page.Navigate(ctx, endpoints.LoginURL); err != nil {
		return err
	}

	if err := f.page.Fill(ctx, endpoints.UsernameSelector, f.req.Credentials.Username); err != nil {
		return err
	}

	if err := sleep(ctx, endpoints.FieldDelay); err != nil {
		return err
	}

	if err := f.page.Fill(ctx, endpoints.PasswordSelector, f.req.Credentials.Password); err != nil {
		return err
	}

	if err := sleep(ctx, endpoints.FieldDelay); err != nil {
		return err
	}

	if err := f.page.Click(ctx, endpoints.SubmitSelector); err != nil {
		return err
	}

	if err := sleep(ctx, f.driver.timeouts.LoginSettle); err != nil {
		return err
	}

	if logger.IsDebugLevel() {
		f.capture(ctx, "sign_in_result")
	}

	return f.resolveInterstitial(ctx)
}

// resolveInterstitial clicks through a page such as account selection when its marker is present.
func (f *flow) resolveInterstitial(ctx context.Context) error {
	interstitial := f.req.Endpoints.Interstitial
	if interstitial == nil {
		return nil
	}

	shown, err := f.page.Has(ctx, interstitial.Marker)
	if err != nil {
		logger.Warnf(ctx, "Failed to check for account selection: %v", err)

		return nil
	}

	if !shown {
		return nil
	}

	logger.Info(ctx, "Account selection required, confirming the account")

	if err = f.page.Click(ctx, interstitial.Action); err != nil {
		logger.Warnf(ctx, "Failed to confirm account selection: %v", err)

		return nil
	}

	return sleep(ctx, f.driver.timeouts.InterstitialSettle)
}

// secondFactor submits a one-time code when the provider asks for one.
// Without a code it waits once for a human to finish in the same browser.
func (f *flow) secondFactor(ctx context.Context) error {
	selector := f.req.Endpoints.SecondFactorSelector
	if selector == "" {
		return nil
	}

	required, err := f.page.Has(ctx, selector)
	if err != nil {
		return err
	}

	if !required {
		return nil
	}

	logger.Info(ctx, "Two-factor authentication required")

	before, err := f.page.URL()
	if err != nil {
		return err
	}

	timeouts := f.driver.timeouts

	code := f.requestCode(ctx)
	if code == "" {
		logger.WarnKV(ctx, "No one-time code available, please enter it in the browser",
			"kind", KindSecondFactorUnresolved.String(),
			"wait", timeouts.ManualSecondFactor.String())

		return sleep(ctx, timeouts.ManualSecondFactor)
	}

	if err = f.page.Fill(ctx, selector, code); err != nil {
		return err
	}

	err = pollUntil(ctx, timeouts.SecondFactorRedirect, timeouts.PollInterval, func(context.Context) (bool, error) {
		current, urlErr := f.page.URL()

		return current != before, urlErr
	})
	if errors.Is(err, errWaitTimeout) {
		// The code may have been accepted without a navigation.
		logger.Info(ctx, "Page did not move on after the one-time code, continuing")

		return nil
	}

	return err
}

func (f *flow) requestCode(ctx context.Context) string {
	if f.driver.secrets == nil {
		return ""
	}

	values, err := f.driver.secrets.Request(ctx, secret.Request{
		Descriptors: []secret.Descriptor{{
			Name:        SecretOTP,
			Description: fmt.Sprintf("%s one-time code for %s", f.req.Endpoints.Name, f.req.Account),
		}},
		Timeout: f.driver.timeouts.SecretRequest,
	})
	if err != nil {
		logger.Warnf(ctx, "One-time code request failed: %v", err)

		return ""
	}

	return values[SecretOTP]
}

// challenge waits out a bot-mitigation page shown after login.
func (f *flow) challenge(ctx context.Context) error {
	if f.req.Endpoints.ChallengeMarker == "" {
		return nil
	}

	current, err := f.page.URL()
	if err != nil {
		return err
	}

	if !f.req.Endpoints.IsChallenge(current) {
		return nil
	}

	return f.waitChallenge(ctx)
}

// waitChallenge blocks until the approve control shows up.
// A timeout is logged and left for the consent stage to notice.
func (f *flow) waitChallenge(ctx context.Context) error {
	timeouts := f.driver.timeouts

	logger.Warnf(ctx, "Bot-mitigation challenge detected, waiting up to %s for it to clear", timeouts.Challenge)

	err := pollUntil(ctx, timeouts.Challenge, timeouts.PollInterval, func(ctx context.Context) (bool, error) {
		return f.page.Has(ctx, f.req.Endpoints.ApproveSelector)
	})
	if errors.Is(err, errWaitTimeout) {
		logger.WarnKV(ctx, "Challenge did not clear, continuing anyway", "kind", KindChallengeTimeout.String())
		f.capture(ctx, KindChallengeTimeout.String())

		return nil
	}

	if err == nil {
		logger.Info(ctx, "Challenge cleared")
	}

	return err
}

func (f *flow) openAuthorize(ctx context.Context) error {
	logger.Infof(ctx, "Opening authorization page %s", f.authorizeURL)

	return f.page.Navigate(ctx, f.authorizeURL)
}

// consent clicks the approve control unless the provider already redirected back.
// A missing control is logged; the callback wait decides the outcome.
func (f *flow) consent(ctx context.Context) error {
	var (
		endpoints = f.req.Endpoints
		timeouts  = f.driver.timeouts
		passed    bool
	)

	err := pollUntil(ctx, timeouts.Consent, timeouts.PollInterval, func(ctx context.Context) (bool, error) {
		if current, urlErr := f.page.URL(); urlErr == nil && endpoints.InOrigin(current) {
			passed = true

			return true, nil
		}

		return f.page.Has(ctx, endpoints.ApproveSelector)
	})
	if errors.Is(err, errWaitTimeout) {
		logger.Warn(ctx, "Approve control not found, waiting for the callback anyway")
		f.capture(ctx, "approve_control_missing")

		return nil
	}

	if err != nil {
		return err
	}

	if passed {
		logger.Debug(ctx, "Already past the consent screen")

		return nil
	}

	logger.Info(ctx, "Approving access")

	return f.page.Click(ctx, endpoints.ApproveSelector)
}

// awaitCallback waits for the redirect into the relying party.
func (f *flow) awaitCallback(ctx context.Context) error {
	var (
		endpoints = f.req.Endpoints
		timeouts  = f.driver.timeouts
	)

	// The relying party leaves its callback page as soon as the code is exchanged,
	// so the navigation history is searched as well as the current URL.
	err := pollUntil(ctx, timeouts.Callback, timeouts.PollInterval, func(context.Context) (bool, error) {
		current, urlErr := f.page.URL()
		if urlErr != nil {
			return false, urlErr
		}

		for _, candidate := range append(f.page.VisitedURLs(), current) {
			if endpoints.IsCallback(candidate) {
				f.callbackURL = candidate

				return true, nil
			}
		}

		return false, nil
	})
	if errors.Is(err, errWaitTimeout) {
		return withKind(KindOAuthTimeout,
			fmt.Errorf("%w: no redirect to %s%s within %s", ErrOAuthTimeout, endpoints.Origin, endpoints.CallbackPath, timeouts.Callback))
	}

	if err == nil {
		logger.Debugf(ctx, "OAuth callback reached: %s", f.callbackURL)
	}

	return err
}

// identity reads the user id from web storage, falling back to the authorization code.
func (f *flow) identity(ctx context.Context) (Result, error) {
	var (
		endpoints = f.req.Endpoints
		timeouts  = f.driver.timeouts
		userID    string
	)

	err := pollUntil(ctx, timeouts.Identity, timeouts.PollInterval, func(ctx context.Context) (bool, error) {
		raw, found, storageErr := f.page.LocalStorageItem(ctx, endpoints.userStorageKey())
		if storageErr != nil || !found {
			return false, storageErr
		}

		id := gjson.Get(raw, endpoints.userIDPath())
		if !id.Exists() || id.String() == "" {
			return false, nil
		}

		userID = id.String()

		return true, nil
	})

	switch {
	case err == nil:
		cookies, cookiesErr := f.page.Cookies(ctx)
		if cookiesErr != nil {
			return nil, cookiesErr
		}

		f.saveSnapshot(ctx)

		return &Authorized{
			Cookies: cookie.Scope(cookies, endpoints.Origin),
			UserID:  userID,
		}, nil
	case !errors.Is(err, errWaitTimeout):
		return nil, err
	}

	logger.Warn(ctx, "User id not found in web storage, looking for an authorization code")

	query := f.callbackQuery()
	if query == nil {
		return nil, withKind(KindNoIdentity, ErrNoIdentity)
	}

	f.capture(ctx, "no_user_id")

	return &OAuthCodeOnly{Query: query}, nil
}
