// Package config loads service configuration from a YAML file, .env files,
// and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/alnah/go-certmail/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidEnv     = errors.New("invalid environment variable")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Email providers.
const (
	ProviderSMTP  = "smtp"
	ProviderBrevo = "brevo"
)

// Limits enforced by Validate.
const (
	MaxDimension = 10000 // pixels, per side
	MaxEngines   = 8     // ~200MB of Chrome each
)

// Config holds all configuration for certificate generation and delivery.
type Config struct {
	App         AppConfig         `yaml:"app"`
	Server      ServerConfig      `yaml:"server"`
	Certificate CertificateConfig `yaml:"certificate"`
	Paths       PathsConfig       `yaml:"paths"`
	Render      RenderConfig      `yaml:"render"`
	Email       EmailConfig       `yaml:"email"`
}

// AppConfig defines runtime environment options.
type AppConfig struct {
	Env      string `yaml:"env"`      // "development" selects console logging
	LogLevel string `yaml:"logLevel"` // zerolog level name (default: "info")
}

// ServerConfig defines HTTP server options.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"corsOrigins"` // empty = allow all
	UploadLimit int64    `yaml:"uploadLimit"` // bytes
}

// CertificateConfig defines the rendered document.
type CertificateConfig struct {
	Width      int    `yaml:"width"`      // pixels, must match the background
	Height     int    `yaml:"height"`     // pixels, must match the background
	Template   string `yaml:"template"`   // template name without .html
	Background string `yaml:"background"` // image file name in paths.assets
}

// PathsConfig defines where assets are read and documents written.
type PathsConfig struct {
	Templates string `yaml:"templates"` // empty = embedded template only
	Assets    string `yaml:"assets"`
	Temp      string `yaml:"temp"`
}

// RenderConfig defines headless browser options.
type RenderConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	Engines    int           `yaml:"engines"`    // concurrent browsers for single requests
	BrowserBin string        `yaml:"browserBin"` // empty = rod-managed Chromium
	NoSandbox  bool          `yaml:"noSandbox"`
}

// EmailConfig defines the outbound transport.
type EmailConfig struct {
	Provider string      `yaml:"provider"` // "smtp" or "brevo"
	From     string      `yaml:"from"`     // empty = SMTP user
	SendRate float64     `yaml:"sendRate"` // messages per second, 0 = unlimited
	SMTP     SMTPConfig  `yaml:"smtp"`
	Brevo    BrevoConfig `yaml:"brevo"`
}

// SMTPConfig defines SMTP credentials.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// BrevoConfig defines Brevo API credentials.
type BrevoConfig struct {
	APIKey string `yaml:"apiKey"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		App:    AppConfig{Env: "development", LogLevel: "info"},
		Server: ServerConfig{Port: 5001, UploadLimit: 5 << 20},
		Certificate: CertificateConfig{
			Width:      1200,
			Height:     800,
			Template:   "certificate",
			Background: "certificate-bg.png",
		},
		Paths: PathsConfig{
			Assets: "assets",
			Temp:   filepath.Join(os.TempDir(), "certmail"),
		},
		Render: RenderConfig{Timeout: 30 * time.Second, Engines: 1},
		Email: EmailConfig{
			Provider: ProviderSMTP,
			SMTP:     SMTPConfig{Host: "smtp.gmail.com", Port: 587},
		},
	}
}

// LoadEnvFiles loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if !fileExists(f) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrConfigParse, f, err)
		}
	}
	return nil
}

// Load builds the configuration: defaults, then the YAML file at path (if
// not empty), then environment overrides read through getenv.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yamlutil.UnmarshalStrict(data, c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return nil
}

// applyEnv overrides fields from environment variables. Unset variables
// leave the current value alone; malformed numbers are an error.
func (c *Config) applyEnv(getenv func(string) string) error {
	setString(getenv, "APP_ENV", &c.App.Env)
	setString(getenv, "LOG_LEVEL", &c.App.LogLevel)
	setString(getenv, "CERTMAIL_TEMPLATES_DIR", &c.Paths.Templates)
	setString(getenv, "CERTMAIL_ASSETS_DIR", &c.Paths.Assets)
	setString(getenv, "CERTMAIL_TEMP_DIR", &c.Paths.Temp)
	setString(getenv, "ROD_BROWSER_BIN", &c.Render.BrowserBin)
	setString(getenv, "EMAIL_PROVIDER", &c.Email.Provider)
	setString(getenv, "SMTP_FROM", &c.Email.From)
	setString(getenv, "SMTP_HOST", &c.Email.SMTP.Host)
	setString(getenv, "BREVO_API_KEY", &c.Email.Brevo.APIKey)

	if v := getenv("SMTP_USER"); v != "" {
		c.Email.SMTP.User = strings.TrimSpace(v)
	}
	// App passwords are often pasted with the spaces Google displays.
	if v := getenv("SMTP_PASS"); v != "" {
		c.Email.SMTP.Password = strings.Join(strings.Fields(v), "")
	}
	if v := getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitCSV(v)
	}
	if v := getenv("ROD_NO_SANDBOX"); v != "" {
		c.Render.NoSandbox = v == "1" || strings.EqualFold(v, "true")
	}
	if getenv("CI") == "true" {
		c.Render.NoSandbox = true
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"PORT", &c.Server.Port},
		{"CERTIFICATE_WIDTH", &c.Certificate.Width},
		{"CERTIFICATE_HEIGHT", &c.Certificate.Height},
		{"SMTP_PORT", &c.Email.SMTP.Port},
		{"RENDER_ENGINES", &c.Render.Engines},
	}
	for _, it := range ints {
		if err := setInt(getenv, it.key, it.dst); err != nil {
			return err
		}
	}

	if v := getenv("RENDER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: RENDER_TIMEOUT=%q: %v", ErrInvalidEnv, v, err)
		}
		c.Render.Timeout = d
	}
	if v := getenv("EMAIL_SEND_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: EMAIL_SEND_RATE=%q: %v", ErrInvalidEnv, v, err)
		}
		c.Email.SendRate = f
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Certificate.Width <= 0 || c.Certificate.Width > MaxDimension {
		return fmt.Errorf("%w: certificate.width must be between 1 and %d, got %d", ErrInvalidConfig, MaxDimension, c.Certificate.Width)
	}
	if c.Certificate.Height <= 0 || c.Certificate.Height > MaxDimension {
		return fmt.Errorf("%w: certificate.height must be between 1 and %d, got %d", ErrInvalidConfig, MaxDimension, c.Certificate.Height)
	}
	if c.Certificate.Template == "" || c.Certificate.Background == "" {
		return fmt.Errorf("%w: certificate.template and certificate.background are required", ErrInvalidConfig)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port must be between 1 and 65535, got %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.UploadLimit <= 0 {
		return fmt.Errorf("%w: server.uploadLimit must be positive", ErrInvalidConfig)
	}
	if c.Render.Engines < 1 || c.Render.Engines > MaxEngines {
		return fmt.Errorf("%w: render.engines must be between 1 and %d, got %d", ErrInvalidConfig, MaxEngines, c.Render.Engines)
	}
	if c.Render.Timeout <= 0 {
		return fmt.Errorf("%w: render.timeout must be positive", ErrInvalidConfig)
	}
	if c.Paths.Temp == "" {
		return fmt.Errorf("%w: paths.temp is required", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Email.Provider) {
	case ProviderSMTP, ProviderBrevo:
	default:
		return fmt.Errorf("%w: email.provider must be smtp or brevo, got %q", ErrInvalidConfig, c.Email.Provider)
	}
	if c.Email.SendRate < 0 {
		return fmt.Errorf("%w: email.sendRate must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Sender returns the From address: email.from, or the SMTP user when unset.
func (c *Config) Sender() string {
	if c.Email.From != "" {
		return c.Email.From
	}
	return c.Email.SMTP.User
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

func setString(getenv func(string) string, key string, dst *string) {
	if v := getenv(key); v != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(getenv func(string) string, key string, dst *int) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%w: %s=%q: not an integer", ErrInvalidEnv, key, v)
	}
	*dst = n
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
