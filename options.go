package certmail

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Default settings for the stock certificate design.
const (
	DefaultWidth          = 1200
	DefaultHeight         = 800
	DefaultTemplateName   = "certificate"
	DefaultBackgroundName = "certificate-bg.png"
	defaultTimeout        = 30 * time.Second
)

// settings collects everything an Option can change. Each constructor reads
// the fields it cares about.
type settings struct {
	logger         zerolog.Logger
	timeout        time.Duration
	browserBin     string
	noSandbox      bool
	size           Size
	tempDir        string
	templateName   string
	backgroundName string
	from           string
	sendRate       float64
}

func defaultSettings() settings {
	return settings{
		logger:         zerolog.Nop(),
		timeout:        defaultTimeout,
		size:           Size{Width: DefaultWidth, Height: DefaultHeight},
		tempDir:        filepath.Join(os.TempDir(), "certmail"),
		templateName:   DefaultTemplateName,
		backgroundName: DefaultBackgroundName,
	}
}

func applyOptions(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures pipeline components.
type Option func(*settings)

// WithLogger sets the logger used for pipeline events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithTimeout bounds one render when the context has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithBrowserBin selects the Chrome binary instead of rod's managed Chromium.
func WithBrowserBin(path string) Option {
	return func(s *settings) {
		s.browserBin = path
	}
}

// WithNoSandbox disables the Chrome sandbox, required in most containers.
func WithNoSandbox(noSandbox bool) Option {
	return func(s *settings) {
		s.noSandbox = noSandbox
	}
}

// WithSize sets the certificate size in CSS pixels.
func WithSize(width, height int) Option {
	return func(s *settings) {
		s.size = Size{Width: width, Height: height}
	}
}

// WithTempDir sets where generated documents are written.
func WithTempDir(dir string) Option {
	return func(s *settings) {
		if dir != "" {
			s.tempDir = dir
		}
	}
}

// WithAssetNames overrides the template name and background file name.
func WithAssetNames(template, background string) Option {
	return func(s *settings) {
		if template != "" {
			s.templateName = template
		}
		if background != "" {
			s.backgroundName = background
		}
	}
}

// WithFrom sets the sender address. Empty means the SMTP user.
func WithFrom(addr string) Option {
	return func(s *settings) {
		s.from = addr
	}
}

// WithSendRate limits deliveries to perSecond messages. Zero disables the limit.
func WithSendRate(perSecond float64) Option {
	return func(s *settings) {
		s.sendRate = perSecond
	}
}
