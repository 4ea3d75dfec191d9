package secret

import "time"

// SetTOTPClock replaces the clock of a TOTP channel.
func SetTOTPClock(t *TOTP, now func() time.Time) {
	t.now = now
}
