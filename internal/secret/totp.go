package secret

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// totpPeriod is the code validity window (RFC 6238 default).
	totpPeriod = 30 * time.Second
	// totpMinRemaining is the shortest remaining validity worth submitting;
	// closer to the window edge the channel waits for the next code.
	totpMinRemaining = 3 * time.Second
)

// ErrInvalidTOTPSeed is returned for a seed that is not valid base32.
var ErrInvalidTOTPSeed = errors.New("invalid TOTP seed")

// TOTP derives time-based one-time codes from an enrolled base32 seed.
// It answers every descriptor in names, so it only gets wired where a code is expected.
type TOTP struct {
	seed  string
	names map[string]struct{}
	now   func() time.Time
}

// NewTOTP creates a TOTP channel answering the given secret names.
// Spaces, dashes, padding and lower case in the seed are tolerated.
func NewTOTP(seed string, names ...string) (*TOTP, error) {
	normalized := strings.ToUpper(strings.NewReplacer(" ", "", "-", "", "=", "").Replace(seed))
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty seed", ErrInvalidTOTPSeed)
	}

	if _, err := Code(normalized, time.Now()); err != nil {
		return nil, err
	}

	nameSet := make(map[string]struct{}, len(names))
	for _, name := range names {
		nameSet[name] = struct{}{}
	}

	return &TOTP{seed: normalized, names: nameSet, now: time.Now}, nil
}

// Request returns a fresh code for every matching descriptor.
func (t *TOTP) Request(ctx context.Context, req Request) (map[string]string, error) {
	var wanted []string

	for _, d := range req.Descriptors {
		if _, ok := t.names[d.Name]; ok {
			wanted = append(wanted, d.Name)
		}
	}

	if len(wanted) == 0 {
		return nil, ErrUnavailable
	}

	ctx, cancel := withDeadline(ctx, req.Timeout)
	defer cancel()

	now := t.now()

	if remaining := totpPeriod - now.Sub(now.Truncate(totpPeriod)); remaining < totpMinRemaining {
		select {
		case <-ctx.Done():
			return nil, ErrUnavailable
		case <-time.After(remaining):
			now = now.Add(remaining)
		}
	}

	code, err := Code(t.seed, now)
	if err != nil {
		return nil, err
	}

	found := make(map[string]string, len(wanted))
	for _, name := range wanted {
		found[name] = code
	}

	return found, nil
}

// Code computes the six-digit RFC 6238 SHA-1 code for the base32 seed at moment.
func Code(seed string, moment time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(seed, moment, totp.ValidateOpts{
		Period:    uint(totpPeriod / time.Second),
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidTOTPSeed, err)
	}

	return code, nil
}
