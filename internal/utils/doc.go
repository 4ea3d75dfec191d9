// Package utils provides small helpers shared across the application:
// name sanitizing for cache keys and artifact files, randomized pacing,
// atomic file writes, content type checks and slice mapping.
package utils
