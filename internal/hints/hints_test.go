package hints

// Notes:
// - ForBrowserConnect cases share process state: t.Setenv and the
//   package-level IsInContainer variable, so they run sequentially.

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestForBrowserConnect - Sandbox and browser binary suggestions
// ---------------------------------------------------------------------------

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		container   bool
		env         map[string]string
		wantSandbox bool
		wantBin     bool
	}{
		{
			name:        "ci without settings",
			env:         map[string]string{"CI": "true"},
			wantSandbox: true,
			wantBin:     true,
		},
		{
			name:        "docker without settings",
			container:   true,
			wantSandbox: true,
			wantBin:     true,
		},
		{
			name:      "sandbox already disabled",
			container: true,
			env:       map[string]string{"ROD_NO_SANDBOX": "1"},
			wantBin:   true,
		},
		{
			name: "laptop with browser bin",
			env:  map[string]string{"ROD_BROWSER_BIN": "/usr/bin/chromium"},
		},
		{
			name:      "everything configured",
			container: true,
			env: map[string]string{
				"GITHUB_ACTIONS":  "true",
				"ROD_NO_SANDBOX":  "1",
				"ROD_BROWSER_BIN": "/usr/bin/chromium",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := IsInContainer
			defer func() { IsInContainer = orig }()
			IsInContainer = func() bool { return tt.container }

			for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "ROD_NO_SANDBOX", "ROD_BROWSER_BIN"} {
				t.Setenv(k, tt.env[k])
			}

			hint := ForBrowserConnect()

			if got := strings.Contains(hint, "ROD_NO_SANDBOX"); got != tt.wantSandbox {
				t.Errorf("sandbox hint = %v, want %v (%q)", got, tt.wantSandbox, hint)
			}
			if got := strings.Contains(hint, "ROD_BROWSER_BIN"); got != tt.wantBin {
				t.Errorf("browser bin hint = %v, want %v (%q)", got, tt.wantBin, hint)
			}
			if !tt.wantSandbox && !tt.wantBin && hint != "" {
				t.Errorf("hint = %q, want empty", hint)
			}
		})
	}
}

func TestForTimeout(t *testing.T) {
	hint := ForTimeout()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "RENDER_TIMEOUT") {
		t.Error("expected RENDER_TIMEOUT mention")
	}
}

func TestForConfigNotFound(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		contains string
	}{
		{"no path", "", "--config"},
		{"with path", "/etc/certmail.yaml", "/etc/certmail.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := ForConfigNotFound(tt.path)

			if !strings.Contains(hint, "hint:") {
				t.Error("expected hint prefix")
			}
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
		})
	}
}

func TestForMissingAsset(t *testing.T) {
	if hint := ForMissingAsset(""); hint != "" {
		t.Errorf("expected empty hint for empty path, got %q", hint)
	}

	hint := ForMissingAsset("assets/certificate-bg.png")
	if !strings.Contains(hint, "assets/certificate-bg.png") {
		t.Errorf("expected path in hint, got %q", hint)
	}
	if !strings.Contains(hint, "CERTMAIL_ASSETS_DIR") {
		t.Error("expected CERTMAIL_ASSETS_DIR mention")
	}
}

func TestForMailConfig(t *testing.T) {
	tests := []struct {
		provider string
		contains string
	}{
		{"smtp", "SMTP_PASS"},
		{"", "app password"},
		{"Brevo", "BREVO_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			hint := ForMailConfig(tt.provider)
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("ForMailConfig(%q) = %q, want it to contain %q", tt.provider, hint, tt.contains)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	if format("") != "" {
		t.Error("empty hint should format to empty string")
	}
	if formatHints(nil) != "" {
		t.Error("no hints should format to empty string")
	}
	if got := formatHints([]string{"a", "b"}); got != "\n  hint: a; b" {
		t.Errorf("formatHints() = %q", got)
	}
}
