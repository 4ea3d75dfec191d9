package utils

import (
	"fmt"
	"math/rand/v2"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"
)

var (
	// textContentTypePatterns is a slice of regular expressions that match content types
	// considered to be text-based. This includes "text/*", "application/json" and "+json" variants.
	//nolint:gochecknoglobals // These are immutable, pre-compiled regex patterns and used as constants.
	textContentTypePatterns = []*regexp.Regexp{
		regexp.MustCompile("^text/.+"),
		regexp.MustCompile(`^application/([a-z.-]+\+)?json$`),
	}
)

// SanitizeName replaces every rune that is not a letter or a digit with an underscore.
// The result is safe as a file name component and as a storage key on every platform.
func SanitizeName(name string) string {
	if name == "" {
		return "_"
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}

		return '_'
	}, name)
}

// RandomDuration returns a random duration in [minDuration, maxDuration).
func RandomDuration(minDuration, maxDuration time.Duration) time.Duration {
	if minDuration > maxDuration {
		minDuration, maxDuration = maxDuration, minDuration
	}

	if minDuration == maxDuration {
		return minDuration
	}

	//nolint:gosec // Weak random is fine for pacing.
	return minDuration + time.Duration(rand.Int64N(int64(maxDuration-minDuration)))
}

// WriteFileAtomic writes data to a temporary file in the target folder and renames it into place,
// so readers never observe a half-written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tmpName := tmp.Name()

	defer os.Remove(tmpName) //nolint:errcheck // Already renamed on success.

	if _, err = tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // The write error is the one worth reporting.

		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err = os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}

// IsTextContentType checks if the given content type represents a text-based format.
// It also checks that the charset, if present, is either "utf-8" or "us-ascii".
func IsTextContentType(contentType string) bool {
	parsedType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	for _, pattern := range textContentTypePatterns {
		if !pattern.MatchString(parsedType) {
			continue
		}

		charset := strings.ToLower(params["charset"])

		return charset == "" || charset == "utf-8" || charset == "us-ascii"
	}

	return false
}
