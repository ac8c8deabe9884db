package main

import (
	"context"
	"errors"
	"os"

	certmail "github.com/alnah/go-certmail"
	"github.com/alnah/go-certmail/internal/config"
	"github.com/alnah/go-certmail/internal/hints"
	"github.com/alnah/go-certmail/internal/mailer"
)

// Exit codes for the certmail CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Everything generated and delivered
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or input
	ExitIO       = 3 // Missing asset, file not found, permission denied
	ExitBrowser  = 4 // Browser/Chrome errors
	ExitDelivery = 5 // At least one email was not sent
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, certmail.ErrBrowserConnect) ||
		errors.Is(err, certmail.ErrPageCreate) ||
		errors.Is(err, certmail.ErrPageLoad) ||
		errors.Is(err, certmail.ErrPDFGeneration) ||
		errors.Is(err, certmail.ErrRender) {
		return ExitBrowser
	}

	// Delivery errors (exit 5)
	if errors.Is(err, certmail.ErrDelivery) ||
		errors.Is(err, ErrRecordsFailed) {
		return ExitDelivery
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidEnv) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, certmail.ErrConfiguration) ||
		errors.Is(err, certmail.ErrInvalidSize) ||
		errors.Is(err, certmail.ErrParse) ||
		errors.Is(err, certmail.ErrMissingEmail) ||
		errors.Is(err, ErrNoParticipants) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, certmail.ErrMissingAsset) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadRoster) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, env *Environment) string {
	var missing *certmail.MissingAssetError
	switch {
	case errors.As(err, &missing):
		return hints.ForMissingAsset(missing.Path)
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(env.ConfigPath)
	case errors.Is(err, certmail.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, mailer.ErrNotConfigured) && env.Config != nil:
		return hints.ForMailConfig(env.Config.Email.Provider)
	}
	return ""
}
