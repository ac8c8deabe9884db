package assets

// AssetLoader defines the contract for loading certificate templates and images.
type AssetLoader interface {
	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns a *NotFoundError matching ErrTemplateNotFound if it doesn't exist.
	LoadTemplate(name string) (string, error)

	// LoadImage loads an image file by name (with its extension).
	// Returns a *NotFoundError matching ErrImageNotFound if it doesn't exist.
	LoadImage(name string) ([]byte, error)
}

// DefaultTemplateName is the name of the built-in certificate template.
const DefaultTemplateName = "certificate"

// DefaultBackgroundName is the background image file expected in the assets directory.
const DefaultBackgroundName = "certificate-bg.png"
