package diagnostics

import "time"

// SetClock replaces the clock of a file sink.
func SetClock(s *FileSink, now func() time.Time) {
	s.now = now
}
