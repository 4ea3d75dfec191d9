package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestShort tests the Short function.
func TestShort(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Version, Short())
}

// TestFull tests that Full carries every build field.
func TestFull(t *testing.T) {
	t.Parallel()

	full := Full()

	assert.True(t, strings.HasPrefix(full, "version: "+Version))
	assert.Contains(t, full, "commit: "+Commit)
	assert.Contains(t, full, "built at: "+BuildTime)
}

// TestVersionFormat tests that the default version looks like semver.
func TestVersionFormat(t *testing.T) {
	t.Parallel()

	assert.NotEmpty(t, Commit)
	assert.NotEmpty(t, BuildTime)
	assert.Len(t, strings.Split(Version, "."), 3)
	assert.NotContains(t, Version, " ")
}
