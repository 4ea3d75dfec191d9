package signin

import "time"

// Timeouts bounds every wait of a sign-in.
type Timeouts struct {
	// LoginSettle is paused after submitting credentials.
	LoginSettle time.Duration
	// InterstitialSettle is paused after resolving an interstitial.
	InterstitialSettle time.Duration
	// SecretRequest bounds the one-time code request.
	SecretRequest time.Duration
	// SecondFactorRedirect bounds the wait for the page to move on after a code is submitted.
	SecondFactorRedirect time.Duration
	// ManualSecondFactor is the passive wait for a human when no code arrived.
	ManualSecondFactor time.Duration
	// Challenge bounds the wait for the bot-mitigation page to clear.
	Challenge time.Duration
	// Consent bounds the wait for the approve control.
	Consent time.Duration
	// Callback bounds the wait for the redirect into the relying party.
	Callback time.Duration
	// Identity bounds the wait for the stored user object.
	Identity time.Duration
	// Capture bounds one diagnostics capture.
	Capture time.Duration
	// PollInterval is the delay between two checks of a condition.
	PollInterval time.Duration
}

// DefaultTimeouts returns the timeouts used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		LoginSettle:          10 * time.Second,
		InterstitialSettle:   5 * time.Second,
		SecretRequest:        time.Minute,
		SecondFactorRedirect: 10 * time.Second,
		ManualSecondFactor:   30 * time.Second,
		Challenge:            60 * time.Second,
		Consent:              30 * time.Second,
		Callback:             30 * time.Second,
		Identity:             10 * time.Second,
		Capture:              15 * time.Second,
		PollInterval:         500 * time.Millisecond,
	}
}

// Total returns the worst-case time spent waiting, excluding browser operations.
func (t Timeouts) Total() time.Duration {
	return t.LoginSettle + t.InterstitialSettle + t.SecretRequest + t.SecondFactorRedirect +
		t.ManualSecondFactor + t.Challenge + t.Consent + t.Callback + t.Identity
}

// withDefaults fills zero fields from DefaultTimeouts.
func (t Timeouts) withDefaults() Timeouts {
	defaults := DefaultTimeouts()

	fill := func(value *time.Duration, fallback time.Duration) {
		if *value <= 0 {
			*value = fallback
		}
	}

	fill(&t.LoginSettle, defaults.LoginSettle)
	fill(&t.InterstitialSettle, defaults.InterstitialSettle)
	fill(&t.SecretRequest, defaults.SecretRequest)
	fill(&t.SecondFactorRedirect, defaults.SecondFactorRedirect)
	fill(&t.ManualSecondFactor, defaults.ManualSecondFactor)
	fill(&t.Challenge, defaults.Challenge)
	fill(&t.Consent, defaults.Consent)
	fill(&t.Callback, defaults.Callback)
	fill(&t.Identity, defaults.Identity)
	fill(&t.Capture, defaults.Capture)
	fill(&t.PollInterval, defaults.PollInterval)

	return t
}

// Option configures a Driver.
type Option func(*Driver)

// WithTimeouts overrides the default timeouts; zero fields keep their defaults.
func WithTimeouts(timeouts Timeouts) Option {
	return func(d *Driver) {
		d.timeouts = timeouts.withDefaults()
	}
}
