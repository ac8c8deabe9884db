package assets

import (
	"errors"
	"fmt"
	"path/filepath"
)

// AssetResolver combines the loaders the certificate pipeline needs.
// Templates come from the custom directory first, falling back to embedded
// when not found there. Images come from the assets directory only.
type AssetResolver struct {
	templates AssetLoader // nil if no custom template directory
	embedded  AssetLoader
	images    AssetLoader // nil if the assets directory does not exist
	imageDir  string
}

// NewAssetResolver creates an AssetResolver.
// An empty templateDir uses only the embedded template. A templateDir that is
// set but invalid is an error. A missing imageDir is not: every image lookup
// then fails with a NotFoundError naming the path that would have been read.
func NewAssetResolver(templateDir, imageDir string) (*AssetResolver, error) {
	r := &AssetResolver{
		embedded: NewEmbeddedLoader(),
		imageDir: imageDir,
	}

	if templateDir != "" {
		fsLoader, err := NewFilesystemLoader(templateDir)
		if err != nil {
			return nil, err
		}
		r.templates = fsLoader
	}

	if imageDir != "" {
		fsLoader, err := NewFilesystemLoader(imageDir)
		switch {
		case err == nil:
			r.images = fsLoader
			r.imageDir = fsLoader.BasePath()
		case errors.Is(err, ErrInvalidBasePath):
			if abs, absErr := filepath.Abs(imageDir); absErr == nil {
				r.imageDir = abs
			}
		default:
			return nil, fmt.Errorf("opening image directory: %w", err)
		}
	}

	return r, nil
}

// LoadTemplate loads a template, trying the custom directory first if configured.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	if r.templates == nil {
		return r.embedded.LoadTemplate(name)
	}

	content, err := r.templates.LoadTemplate(name)
	if err == nil {
		return content, nil
	}

	// Only fall back for "not found" errors, not validation or I/O errors
	if !errors.Is(err, ErrTemplateNotFound) {
		return "", err
	}

	return r.embedded.LoadTemplate(name)
}

// LoadImage loads an image from the assets directory.
func (r *AssetResolver) LoadImage(name string) ([]byte, error) {
	if r.images != nil {
		return r.images.LoadImage(name)
	}
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	return nil, &NotFoundError{Kind: KindImage, Name: name, Path: filepath.Join(r.imageDir, name)}
}

// HasCustomTemplates returns true if a custom template directory is configured.
func (r *AssetResolver) HasCustomTemplates() bool {
	return r.templates != nil
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
