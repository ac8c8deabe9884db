package certmail

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/alnah/go-certmail/internal/fileutil"
	"github.com/alnah/go-certmail/internal/process"
)

const (
	// cssPixelsPerInch converts certificate pixels into Chrome paper inches.
	cssPixelsPerInch   = 96.0
	healthCheckTimeout = 5 * time.Second
)

// Size is a certificate size in CSS pixels.
type Size struct {
	Width  int
	Height int
}

// Validate rejects non-positive dimensions.
func (s Size) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, s.Width, s.Height)
	}
	return nil
}

// Renderer prints markup to a PDF file at outPath.
// Engine and EnginePool implement it.
type Renderer interface {
	Render(ctx context.Context, markup string, size Size, outPath string) error
}

// Compile-time interface checks
var (
	_ Renderer = (*Engine)(nil)
	_ Renderer = (*EnginePool)(nil)
)

// Engine owns one headless Chrome. The browser is launched on first use,
// health-checked on every acquisition and relaunched when it stops
// answering. Renders are serialized: one page at a time per Engine.
type Engine struct {
	timeout    time.Duration
	browserBin string
	noSandbox  bool
	logger     zerolog.Logger

	mu      sync.Mutex
	browser *rod.Browser
	pid     int
	closed  bool
}

// NewEngine creates an Engine. No browser starts until the first render.
func NewEngine(opts ...Option) *Engine {
	s := applyOptions(opts)
	return &Engine{
		timeout:    s.timeout,
		browserBin: s.browserBin,
		noSandbox:  s.noSandbox,
		logger:     s.logger,
	}
}

// Acquire returns a live browser, launching or replacing it as needed.
func (e *Engine) Acquire(ctx context.Context) (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acquireLocked(ctx)
}

func (e *Engine) acquireLocked(ctx context.Context) (*rod.Browser, error) {
	if e.closed {
		return nil, ErrEngineClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.browser != nil {
		if e.healthy(ctx) {
			return e.browser, nil
		}
		e.logger.Warn().Int("pid", e.pid).Msg("browser unresponsive, relaunching")
		e.shutdownLocked()
	}

	if err := e.launchLocked(); err != nil {
		return nil, err
	}
	return e.browser, nil
}

// healthy asks the browser for its version over CDP.
func (e *Engine) healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	_, err := proto.BrowserGetVersion{}.Call(e.browser.Context(ctx))
	return err == nil
}

func (e *Engine) launchLocked() error {
	l := launcher.New()

	if e.browserBin != "" {
		l = l.Bin(e.browserBin)
	}
	if e.noSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		process.KillGroup(l.PID())
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	e.browser = browser
	e.pid = l.PID()
	e.logger.Debug().Int("pid", e.pid).Msg("browser launched")
	return nil
}

// shutdownLocked closes the browser and kills its process group in case
// Close could not reach it.
func (e *Engine) shutdownLocked() {
	if e.browser == nil {
		return
	}
	if err := e.browser.Close(); err != nil {
		process.KillGroup(e.pid)
	}
	e.browser = nil
	e.pid = 0
}

// Close releases the browser. Further renders fail with ErrEngineClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.shutdownLocked()
	return nil
}

// Render prints markup to a single-page PDF of exactly size, with the
// background printed and no margins, and writes it to outPath. The page is
// always closed.
func (e *Engine) Render(ctx context.Context, markup string, size Size, outPath string) error {
	if err := size.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	browser, err := e.acquireLocked(ctx)
	if err != nil {
		return err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(markup, "html")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer cleanup()

	timeout, err := e.timeoutFor(ctx)
	if err != nil {
		return err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	p := page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             size.Width,
		Height:            size.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("%w: setting viewport: %v", ErrPageLoad, err)
	}

	// Load event only: the document has no external resources.
	if err := p.Navigate("file://" + tmpPath); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := p.PDF(buildPDFOptions(size))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	if err := os.WriteFile(outPath, pdfBuf, 0o600); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrPDFGeneration, outPath, err)
	}
	return nil
}

// timeoutFor uses the context deadline when there is one.
func (e *Engine) timeoutFor(ctx context.Context) (time.Duration, error) {
	if deadline, ok := ctx.Deadline(); ok {
		timeout := time.Until(deadline)
		if timeout <= 0 {
			return 0, context.DeadlineExceeded
		}
		return timeout, nil
	}
	return e.timeout, nil
}

// buildPDFOptions sizes the paper to the certificate with zero margins.
func buildPDFOptions(size Size) *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(float64(size.Width) / cssPixelsPerInch),
		PaperHeight:     floatPtr(float64(size.Height) / cssPixelsPerInch),
		MarginTop:       floatPtr(0),
		MarginBottom:    floatPtr(0),
		MarginLeft:      floatPtr(0),
		MarginRight:     floatPtr(0),
		PrintBackground: true,
		PageRanges:      "1",
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
