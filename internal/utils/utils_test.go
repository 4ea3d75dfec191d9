package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSanitizeName tests the SanitizeName function.
func TestSanitizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty string", input: "", expected: "_"},
		{name: "alphanumeric", input: "Account1", expected: "Account1"},
		{name: "spaces and punctuation", input: "Account 1 (main)", expected: "Account_1__main_"},
		{name: "path separators", input: "../etc/passwd", expected: "___etc_passwd"},
		{name: "unicode letters kept", input: "账号一", expected: "账号一"},
		{name: "email", input: "me@example.com", expected: "me_example_com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, SanitizeName(tt.input))
		})
	}
}

// TestRandomDuration tests the RandomDuration function.
func TestRandomDuration(t *testing.T) {
	t.Parallel()

	for range 100 {
		d := RandomDuration(10*time.Millisecond, 20*time.Millisecond)
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.Less(t, d, 20*time.Millisecond)
	}

	// Swapped bounds are normalized.
	d := RandomDuration(20*time.Millisecond, 10*time.Millisecond)
	assert.GreaterOrEqual(t, d, 10*time.Millisecond)

	assert.Equal(t, time.Second, RandomDuration(time.Second, time.Second))
}

// TestWriteFileAtomic tests the WriteFileAtomic function.
func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0o600))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	err = WriteFileAtomic(filepath.Join(dir, "missing", "state.json"), []byte("x"), 0o600)
	require.Error(t, err)
}

// TestIsTextContentType tests the IsTextContentType function.
func TestIsTextContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		expected    bool
	}{
		{contentType: "text/plain", expected: true},
		{contentType: "text/html; charset=utf-8", expected: true},
		{contentType: "application/json", expected: true},
		{contentType: "application/problem+json", expected: true},
		{contentType: "image/png", expected: false},
		{contentType: "text/plain; charset=invalid", expected: false},
		{contentType: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, IsTextContentType(tt.contentType))
		})
	}
}
