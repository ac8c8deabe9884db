package certmail

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline operations.
var (
	// ErrConfiguration means required settings are missing or invalid.
	// It aborts both single and batch operations.
	ErrConfiguration = errors.New("configuration error")
	// ErrMissingAsset means the template or background could not be loaded.
	// It aborts both single and batch operations.
	ErrMissingAsset = errors.New("missing asset")
	ErrRender       = errors.New("certificate rendering failed")
	ErrDelivery     = errors.New("certificate delivery failed")
	ErrParse        = errors.New("failed to parse participants")

	// Browser errors, wrapped in ErrRender by the Generator.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrEngineClosed   = errors.New("rendering engine closed")

	ErrInvalidSize = errors.New("invalid certificate size")
)

// MissingAssetError reports which asset could not be read and where it was
// looked for.
type MissingAssetError struct {
	Asset string // "template" or "background"
	Name  string
	Path  string
	Err   error
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("certificate %s not found: place %s in the %s directory. Path used: %s",
		e.Asset, e.Name, e.dir(), e.Path)
}

func (e *MissingAssetError) dir() string {
	if e.Asset == assetTemplate {
		return "templates"
	}
	return "assets"
}

// Is reports ErrMissingAsset so callers can classify without errors.As.
func (e *MissingAssetError) Is(target error) bool {
	return target == ErrMissingAsset
}

func (e *MissingAssetError) Unwrap() error {
	return e.Err
}

// isFatal reports whether err must abort a batch instead of failing one record.
func isFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrMissingAsset)
}

// causeError classifies err under kind while keeping err's own message, so
// per-record failure reasons read as the underlying cause.
type causeError struct {
	kind error
	err  error
}

func (e *causeError) Error() string        { return e.err.Error() }
func (e *causeError) Is(target error) bool { return target == e.kind }
func (e *causeError) Unwrap() error        { return e.err }

func wrapCause(kind, err error) error {
	return &causeError{kind: kind, err: err}
}
