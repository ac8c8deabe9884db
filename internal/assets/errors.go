package assets

import (
	"errors"
	"fmt"
)

// Sentinel errors for asset operations.
var (
	// ErrTemplateNotFound indicates the requested template does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrImageNotFound indicates the requested image does not exist.
	ErrImageNotFound = errors.New("image not found")

	// ErrInvalidAssetName indicates the asset name contains invalid characters
	// such as path separators or traversal sequences.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the configured base path is not a valid directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an I/O error occurred while reading an asset file.
	ErrAssetRead = errors.New("failed to read asset")

	// ErrPathTraversal indicates an attempt to access files outside the base path.
	ErrPathTraversal = errors.New("path traversal detected")
)

// Asset kinds reported by NotFoundError.
const (
	KindTemplate = "template"
	KindImage    = "image"
)

// NotFoundError reports a missing asset and the location that was tried.
type NotFoundError struct {
	Kind string
	Name string
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found (path used: %s)", e.Kind, e.Name, e.Path)
}

// Is matches ErrTemplateNotFound or ErrImageNotFound depending on Kind.
func (e *NotFoundError) Is(target error) bool {
	switch e.Kind {
	case KindTemplate:
		return target == ErrTemplateNotFound
	case KindImage:
		return target == ErrImageNotFound
	}
	return false
}
