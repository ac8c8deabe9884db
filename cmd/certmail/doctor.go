package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"

	certmail "github.com/alnah/go-certmail"
)

// ErrNotReady is returned by doctor when a check fails.
var ErrNotReady = errors.New("environment not ready")

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Assets   assetInfo  `json:"assets"`
	Email    emailInfo  `json:"email"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempDir      string `json:"temp_dir"`
	TempWritable bool   `json:"temp_writable"`
}

// assetInfo holds certificate asset checks.
type assetInfo struct {
	Template   string `json:"template"`
	Background string `json:"background"`
	Ready      bool   `json:"ready"`
}

// emailInfo holds transport configuration checks. No message is sent.
type emailInfo struct {
	Provider   string `json:"provider"`
	From       string `json:"from,omitempty"`
	Configured bool   `json:"configured"`
}

func newDoctorCmd(env *Environment) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check Chrome, assets and email settings",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := runDoctor(cmd.Context(), env)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				_ = enc.Encode(result)
			} else {
				printDoctorResult(cmd.OutOrStdout(), result)
			}

			if result.Status == "errors" {
				return ErrNotReady
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "machine-readable output")
	return cmd
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	checkChrome(result, env)
	checkEnvironment(result, env)
	checkSystem(result, env)
	checkAssets(ctx, result, env)
	checkEmail(result, env)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult, env *Environment) {
	chromePath := env.Config.Render.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			// rod downloads Chromium on first launch when nothing is installed.
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; a Chromium build will be downloaded on first render. Set ROD_BROWSER_BIN to use an installed browser")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- configured browser binary
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = !env.Config.Render.NoSandbox
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *Environment) {
	result.Env.Container, result.Env.ContainerHint = isContainer(env.Getenv)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && !env.Config.Render.NoSandbox {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but the sandbox is enabled. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("CERTMAIL_CONTAINER") == "1" {
		return true, "CERTMAIL_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the document directory is writable.
func checkSystem(result *doctorResult, env *Environment) {
	dir := env.Config.Paths.Temp
	result.System.TempDir = dir

	if err := os.MkdirAll(dir, 0o750); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", dir))
		return
	}
	testFile := filepath.Join(dir, "certmail-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", dir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// checkAssets loads the template and background the way a render would.
func checkAssets(ctx context.Context, result *doctorResult, env *Environment) {
	cfg := env.Config
	result.Assets.Template = cfg.Certificate.Template
	result.Assets.Background = cfg.Certificate.Background

	loader, err := certmail.NewAssetLoader(cfg.Paths.Templates, cfg.Paths.Assets)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	cache := certmail.NewAssetCache(loader,
		certmail.WithAssetNames(cfg.Certificate.Template, cfg.Certificate.Background))
	if err := cache.Preload(ctx); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Assets.Ready = true
}

// checkEmail builds the transport without connecting.
func checkEmail(result *doctorResult, env *Environment) {
	cfg := env.Config
	result.Email.Provider = cfg.Email.Provider
	result.Email.From = cfg.Sender()

	d := certmail.NewDeliveryService(mailConfig(cfg), certmail.WithFrom(cfg.Sender()))
	if err := d.Validate(); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Email.Configured = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "certmail doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintf(w, "  [OK] Temp directory: %s\n", r.System.TempDir)
	} else {
		fmt.Fprintf(w, "  [ERROR] Temp directory: %s not writable\n", r.System.TempDir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Assets")
	if r.Assets.Ready {
		fmt.Fprintf(w, "  [OK] Template: %s\n", r.Assets.Template)
		fmt.Fprintf(w, "  [OK] Background: %s\n", r.Assets.Background)
	} else {
		fmt.Fprintln(w, "  [ERROR] Not loadable (see errors below)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Email")
	if r.Email.Configured {
		fmt.Fprintf(w, "  [OK] Provider: %s (from %s)\n", r.Email.Provider, r.Email.From)
	} else {
		fmt.Fprintf(w, "  [ERROR] Provider: %s not configured\n", r.Email.Provider)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to send")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
