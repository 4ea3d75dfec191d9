package diagnostics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/newapi-signin/internal/constants"
	"github.com/oshokin/newapi-signin/internal/logger"
	"github.com/oshokin/newapi-signin/internal/utils"
)

// timestampLayout is the file name timestamp format.
const timestampLayout = "20060102_150405"

// FileSink writes screenshots and page dumps into two directories.
// An empty directory disables that kind of artifact.
type FileSink struct {
	screenshotsDir string
	pagesDir       string
	now            func() time.Time
}

// NewFileSink creates a sink writing into the given directories.
func NewFileSink(screenshotsDir, pagesDir string) *FileSink {
	return &FileSink{
		screenshotsDir: screenshotsDir,
		pagesDir:       pagesDir,
		now:            time.Now,
	}
}

// Capture writes <account>_<ts>_<reason>.png and <account>_<ts>_<provider>_<reason>.html.
func (s *FileSink) Capture(ctx context.Context, target Target, capture Capture) {
	if target == nil {
		return
	}

	var (
		account   = utils.SanitizeName(capture.Account)
		reason    = utils.SanitizeName(capture.Reason)
		timestamp = s.now().Format(timestampLayout)
	)

	if s.screenshotsDir != "" {
		name := fmt.Sprintf("%s_%s_%s%s", account, timestamp, reason, constants.ExtensionPNG)
		s.write(ctx, s.screenshotsDir, name, func() ([]byte, error) {
			return target.Screenshot(ctx)
		})
	}

	if s.pagesDir != "" {
		provider := utils.SanitizeName(capture.Provider)
		name := fmt.Sprintf("%s_%s_%s_%s%s", account, timestamp, provider, reason, constants.ExtensionHTML)

		s.write(ctx, s.pagesDir, name, func() ([]byte, error) {
			html, err := target.HTML(ctx)

			return []byte(html), err
		})
	}
}

func (s *FileSink) write(ctx context.Context, dir, name string, produce func() ([]byte, error)) {
	data, err := produce()
	if err != nil {
		logger.Warnf(ctx, "Failed to capture %s: %v", name, err)

		return
	}

	if err = os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
		logger.Warnf(ctx, "Failed to create diagnostics folder %s: %v", dir, err)

		return
	}

	path := filepath.Join(dir, name)
	if err = os.WriteFile(path, data, constants.DefaultArtifactPermissions); err != nil {
		logger.Warnf(ctx, "Failed to write %s: %v", path, err)

		return
	}

	logger.Infof(ctx, "Saved diagnostics %s (%s)", path, humanize.Bytes(uint64(len(data))))
}
