// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-certmail/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the render timeout.
func ForTimeout() string {
	return format("use --timeout 60s, or raise RENDER_TIMEOUT / render.timeout in the config file")
}

// ForConfigNotFound returns a hint for a missing --config file.
func ForConfigNotFound(path string) string {
	if path == "" {
		return format("use --config /path/to/certmail.yaml")
	}
	return format("check that " + path + " exists, or drop --config to use defaults")
}

// ForMissingAsset returns a hint for a template or background that is not on disk.
func ForMissingAsset(path string) string {
	if path == "" {
		return ""
	}
	return format("create " + path + " or set CERTMAIL_ASSETS_DIR / CERTMAIL_TEMPLATES_DIR")
}

// ForMailConfig returns hints for missing email credentials.
func ForMailConfig(provider string) string {
	if strings.EqualFold(provider, "brevo") {
		return format("set BREVO_API_KEY and SMTP_FROM in the environment or .env")
	}
	return formatHints([]string{
		"set SMTP_USER and SMTP_PASS in the environment or .env",
		"Gmail needs an app password",
	})
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
