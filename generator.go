package certmail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-certmail/internal/fileutil"
	"github.com/alnah/go-certmail/internal/metrics"
)

// Template placeholders. Every occurrence is replaced.
const (
	placeholderName       = "{{NAME}}"
	placeholderWidth      = "{{WIDTH}}"
	placeholderHeight     = "{{HEIGHT}}"
	placeholderBackground = "{{BACKGROUND_IMAGE_URL}}"
)

// fileNameFallback names files for records without a name.
const fileNameFallback = "cert"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// GeneratedDocument is a rendered certificate waiting for delivery.
// The caller owns the file and must delete it.
type GeneratedDocument struct {
	Path string
}

// Generator fills the certificate template for one record and renders it.
type Generator struct {
	assets   *AssetCache
	renderer Renderer
	size     Size
	tempDir  string
	logger   zerolog.Logger

	seq atomic.Uint64
	now func() time.Time
}

// NewGenerator creates a Generator reading assets from cache and rendering
// with r (an Engine or EnginePool).
func NewGenerator(cache *AssetCache, r Renderer, opts ...Option) *Generator {
	s := applyOptions(opts)
	return &Generator{
		assets:   cache,
		renderer: r,
		size:     s.size,
		tempDir:  s.tempDir,
		logger:   s.logger,
		now:      time.Now,
	}
}

// Size returns the configured certificate size.
func (g *Generator) Size() Size {
	return g.size
}

// Generate renders the certificate for rec into the temp directory.
// Asset errors are returned unchanged (they match ErrMissingAsset or
// ErrConfiguration); every other failure matches ErrRender. A failed render
// leaves no file behind.
func (g *Generator) Generate(ctx context.Context, rec Record) (*GeneratedDocument, error) {
	tpl, err := g.assets.Template(ctx)
	if err != nil {
		return nil, err
	}
	background, err := g.assets.Background(ctx)
	if err != nil {
		return nil, err
	}

	if err := g.size.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if err := os.MkdirAll(g.tempDir, 0o750); err != nil {
		metrics.IncGenerated(false)
		return nil, wrapCause(ErrRender, fmt.Errorf("creating temp directory: %w", err))
	}

	markup := fillTemplate(tpl, rec.DisplayName(), g.size, background)
	outPath := filepath.Join(g.tempDir, g.fileName(rec.Name))

	start := time.Now()
	err = g.renderer.Render(ctx, markup, g.size, outPath)
	metrics.ObserveRender(time.Since(start))
	if err != nil {
		metrics.IncGenerated(false)
		if rmErr := fileutil.Remove(outPath); rmErr != nil {
			g.logger.Warn().Err(rmErr).Str("path", outPath).Msg("failed to remove partial output")
		}
		return nil, wrapCause(ErrRender, err)
	}

	metrics.IncGenerated(true)
	g.logger.Info().Str("path", outPath).Msg("PDF generated")
	return &GeneratedDocument{Path: outPath}, nil
}

// fileName returns certificate-<safe name>-<unix ms>-<seq>.pdf. The sequence
// keeps names unique when two records render in the same millisecond.
func (g *Generator) fileName(name string) string {
	return "certificate-" + fileutil.SafeName(name, fileNameFallback) +
		"-" + strconv.FormatInt(g.now().UnixMilli(), 10) +
		"-" + strconv.FormatUint(g.seq.Add(1), 10) + ".pdf"
}

// fillTemplate substitutes every placeholder. The name is HTML-escaped; the
// rest of the template is left as is.
func fillTemplate(tpl, name string, size Size, backgroundURL string) string {
	return strings.NewReplacer(
		placeholderName, htmlEscaper.Replace(name),
		placeholderWidth, strconv.Itoa(size.Width),
		placeholderHeight, strconv.Itoa(size.Height),
		placeholderBackground, backgroundURL,
	).Replace(tpl)
}
