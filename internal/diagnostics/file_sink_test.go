package diagnostics_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/newapi-signin/internal/diagnostics"
	mock_diagnostics "github.com/oshokin/newapi-signin/internal/diagnostics/mocks"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)
}

// TestFileSinkCapture tests artifact naming and contents.
func TestFileSinkCapture(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	target := mock_diagnostics.NewMockTarget(ctrl)

	target.EXPECT().Screenshot(gomock.Any()).Return([]byte("\x89PNG"), nil)
	target.EXPECT().HTML(gomock.Any()).Return("<html></html>", nil)

	root := t.TempDir()
	sink := diagnostics.NewFileSink(filepath.Join(root, "screenshots"), filepath.Join(root, "logs"))
	diagnostics.SetClock(sink, fixedClock)

	sink.Capture(context.Background(), target, diagnostics.Capture{
		Account:  "alice@example.com",
		Provider: "github",
		Reason:   "oauth_timeout",
	})

	png, err := os.ReadFile(filepath.Join(root, "screenshots", "alice_example_com_20250314_150926_oauth_timeout.png"))
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(png))

	html, err := os.ReadFile(filepath.Join(root, "logs", "alice_example_com_20250314_150926_github_oauth_timeout.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(html))
}

// TestFileSinkPartialFailure tests that one failing artifact does not block the other.
func TestFileSinkPartialFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	target := mock_diagnostics.NewMockTarget(ctrl)

	target.EXPECT().Screenshot(gomock.Any()).Return(nil, errors.New("target closed"))
	target.EXPECT().HTML(gomock.Any()).Return("<p>still here</p>", nil)

	root := t.TempDir()
	sink := diagnostics.NewFileSink(filepath.Join(root, "shots"), filepath.Join(root, "pages"))
	diagnostics.SetClock(sink, fixedClock)

	sink.Capture(context.Background(), target, diagnostics.Capture{Account: "bob", Provider: "linuxdo", Reason: "engine"})

	_, err := os.Stat(filepath.Join(root, "shots"))
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(filepath.Join(root, "pages"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bob_20250314_150926_linuxdo_engine.html", entries[0].Name())
}

// TestFileSinkDisabled tests that empty directories and a nil target skip capturing.
func TestFileSinkDisabled(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	target := mock_diagnostics.NewMockTarget(ctrl)

	sink := diagnostics.NewFileSink("", "")
	sink.Capture(context.Background(), target, diagnostics.Capture{Account: "a"})
	sink.Capture(context.Background(), nil, diagnostics.Capture{Account: "a"})

	diagnostics.Nop{}.Capture(context.Background(), target, diagnostics.Capture{})
}
