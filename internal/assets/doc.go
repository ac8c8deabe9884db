// Package assets loads the certificate template and background image.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in certificate.html (go:embed), no images
//	    ├── FilesystemLoader  - {dir}/{name}.html templates and {dir}/{name} images
//	    └── AssetResolver     - custom templates first, embedded fallback;
//	                            images from the assets directory only
//
// The background image has no embedded fallback: it must match the
// configured certificate dimensions, so a missing image is reported with the
// path that was tried rather than silently replaced.
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
