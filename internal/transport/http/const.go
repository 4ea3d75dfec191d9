package http

import "time"

const (
	// DefaultTimeout is the default timeout duration for relying-party requests.
	DefaultTimeout = 30 * time.Second

	// DefaultAcceptLanguage matches the locale the browser sessions run with.
	DefaultAcceptLanguage = "en-US,en;q=0.9"

	// DefaultMaxLogLength is the default maximum size (in bytes) of a logged request or response dump.
	DefaultMaxLogLength = 64 * 1024

	// redactedValue replaces secret header values in debug dumps.
	redactedValue = "[redacted]"
)
