package assets

import (
	"embed"
)

//go:embed templates/*
var templates embed.FS

// EmbeddedLoader loads the built-in certificate template.
// It carries no images. Implements AssetLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadTemplate loads an HTML template from embedded assets by name.
// The name should not include the .html extension.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	path := "templates/" + name + ".html"
	content, err := templates.ReadFile(path)
	if err != nil {
		return "", &NotFoundError{Kind: KindTemplate, Name: name, Path: "embedded:" + path}
	}

	return string(content), nil
}

// LoadImage always reports the image as missing.
func (e *EmbeddedLoader) LoadImage(name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	return nil, &NotFoundError{Kind: KindImage, Name: name, Path: "embedded:images/" + name}
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
