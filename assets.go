package certmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alnah/go-certmail/internal/assets"
)

const (
	assetTemplate   = "template"
	assetBackground = "background"
)

// AssetLoader reads the certificate template and background image by name.
// Any load error other than an invalid name surfaces as a MissingAssetError.
type AssetLoader interface {
	LoadTemplate(name string) (string, error)
	LoadImage(name string) ([]byte, error)
}

// NewAssetLoader returns a loader reading templates from templateDir (falling
// back to the embedded default template) and images from imageDir.
// An empty templateDir uses the embedded template only.
func NewAssetLoader(templateDir, imageDir string) (AssetLoader, error) {
	r, err := assets.NewAssetResolver(templateDir, imageDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return r, nil
}

// AssetCache memoizes the template and the background data URL for the
// lifetime of the process. A failed load is not cached, so the next call
// retries. Safe for concurrent use.
type AssetCache struct {
	loader         AssetLoader
	templateName   string
	backgroundName string

	mu         sync.Mutex
	template   string
	background string
	hasTpl     bool
	hasBg      bool
}

// NewAssetCache creates a cache over loader. WithAssetNames overrides the
// default template and background names.
func NewAssetCache(loader AssetLoader, opts ...Option) *AssetCache {
	s := applyOptions(opts)
	return &AssetCache{
		loader:         loader,
		templateName:   s.templateName,
		backgroundName: s.backgroundName,
	}
}

// Template returns the raw template markup.
func (c *AssetCache) Template(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasTpl {
		return c.template, nil
	}

	tpl, err := c.loader.LoadTemplate(c.templateName)
	if err != nil {
		return "", c.classify(assetTemplate, c.templateName, err)
	}

	c.template = tpl
	c.hasTpl = true
	return tpl, nil
}

// Background returns the background image as a base64 data URL.
func (c *AssetCache) Background(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasBg {
		return c.background, nil
	}

	data, err := c.loader.LoadImage(c.backgroundName)
	if err != nil {
		return "", c.classify(assetBackground, c.backgroundName, err)
	}

	c.background = dataURL(c.backgroundName, data)
	c.hasBg = true
	return c.background, nil
}

// Preload loads both assets so the first request does not pay for disk reads.
func (c *AssetCache) Preload(ctx context.Context) error {
	if _, err := c.Template(ctx); err != nil {
		return err
	}
	_, err := c.Background(ctx)
	return err
}

// classify maps loader errors onto the pipeline taxonomy.
func (c *AssetCache) classify(kind, name string, err error) error {
	if errors.Is(err, assets.ErrInvalidAssetName) || errors.Is(err, assets.ErrPathTraversal) {
		return fmt.Errorf("%w: %s %q: %v", ErrConfiguration, kind, name, err)
	}

	path := name
	var nf *assets.NotFoundError
	if errors.As(err, &nf) {
		path = nf.Path
	}
	return &MissingAssetError{Asset: kind, Name: name, Path: path, Err: err}
}

// dataURL encodes data as an inline URL. The MIME type comes from the file
// extension, falling back to content sniffing.
func dataURL(name string, data []byte) string {
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
