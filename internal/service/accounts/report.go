package accounts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/newapi-signin/internal/constants"
	"github.com/oshokin/newapi-signin/internal/logger"
	"github.com/oshokin/newapi-signin/internal/utils"
)

// Report collects the outcomes of one run.
type Report struct {
	// GeneratedAt is the start of the run.
	GeneratedAt time.Time `yaml:"generated_at"`
	// Duration is the wall time of the run.
	Duration time.Duration `yaml:"-"`
	// Interrupted reports whether the run was canceled.
	Interrupted bool `yaml:"interrupted,omitempty"`
	// Results holds one entry per account and identity provider.
	Results []AccountResult `yaml:"results"`
}

// Counts returns the number of results per status.
func (r *Report) Counts() (authorized, codeOnly, failed int) {
	for i := range r.Results {
		switch r.Results[i].Status {
		case StatusAuthorized:
			authorized++
		case StatusCodeOnly:
			codeOnly++
		case StatusFailed:
			failed++
		}
	}

	return authorized, codeOnly, failed
}

// AnySucceeded reports whether at least one sign-in succeeded.
func (r *Report) AnySucceeded() bool {
	for i := range r.Results {
		if r.Results[i].Succeeded() {
			return true
		}
	}

	return false
}

// WriteReport writes the report as YAML to path, readable by the owner only.
func WriteReport(path string, report *Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(path), constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("failed to create report folder: %w", err)
	}

	return utils.WriteFileAtomic(path, data, constants.DefaultFilePermissions)
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

// PrintSummary prints a formatted summary of the report.
func (s *ServiceImpl) PrintSummary(ctx context.Context, report *Report) {
	if report == nil || len(report.Results) == 0 {
		return
	}

	authorized, codeOnly, failed := report.Counts()

	logger.Info(ctx, "")
	logger.Info(ctx, "═══════════════════════════════════════════════════════════════")

	if report.Interrupted {
		logger.Info(ctx, "             SIGN-IN SUMMARY (Interrupted)")
	} else {
		logger.Info(ctx, "                     SIGN-IN SUMMARY")
	}

	logger.Info(ctx, "═══════════════════════════════════════════════════════════════")
	logger.Infof(ctx, "Sign-ins:         %d total", len(report.Results))

	if authorized > 0 {
		logger.Infof(ctx, "  Authorized:      %d", authorized)
	}

	if codeOnly > 0 {
		logger.Infof(ctx, "  Code only:       %d", codeOnly)
	}

	if failed > 0 {
		logger.Infof(ctx, "  Failed:          %d", failed)
	}

	logger.Infof(ctx, "Duration:         %s", formatDuration(report.Duration))
	logger.Info(ctx, "═══════════════════════════════════════════════════════════════")

	for i := range report.Results {
		result := &report.Results[i]

		switch result.Status {
		case StatusAuthorized:
			logger.Infof(ctx, "✓ %s @ %s (%s): user %s in %s",
				result.Account, result.Provider, result.Method, result.UserID, formatDuration(result.Duration))
		case StatusCodeOnly:
			logger.Warnf(ctx, "~ %s @ %s (%s): OAuth code only in %s",
				result.Account, result.Provider, result.Method, formatDuration(result.Duration))
		case StatusFailed:
			logger.Errorf(ctx, "✗ %s @ %s (%s): %s at %s: %s",
				result.Account, result.Provider, result.Method, result.Kind, result.Stage, result.Error)
		}
	}
}
