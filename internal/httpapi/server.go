// Package httpapi exposes the certificate pipeline over HTTP: single
// certificate requests, CSV bulk uploads, health and metrics.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	certmail "github.com/alnah/go-certmail"
	"github.com/alnah/go-certmail/internal/metrics"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "certificate-automation-api"

// maxErrorMessage caps error messages returned to clients.
const maxErrorMessage = 500

// Pipeline is the part of certmail.Batch the handlers use.
type Pipeline interface {
	Issue(ctx context.Context, rec certmail.Record) error
	Run(ctx context.Context, records []certmail.Record) (*certmail.Summary, error)
}

var _ Pipeline = (*certmail.Batch)(nil)

// Options configures the server.
type Options struct {
	Pipeline    Pipeline
	Logger      zerolog.Logger
	UploadDir   string   // where bulk uploads are staged
	UploadLimit int64    // bytes; zero means 5 MiB
	CORSOrigins []string // empty allows any origin
}

// DefaultUploadLimit is the largest accepted CSV upload.
const DefaultUploadLimit int64 = 5 << 20

// Server wires the handlers into an echo instance.
type Server struct {
	echo        *echo.Echo
	pipeline    Pipeline
	logger      zerolog.Logger
	uploadDir   string
	uploadLimit int64
}

// New builds the server and registers every route.
func New(opts Options) *Server {
	if opts.UploadLimit <= 0 {
		opts.UploadLimit = DefaultUploadLimit
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:        e,
		pipeline:    opts.Pipeline,
		logger:      opts.Logger,
		uploadDir:   opts.UploadDir,
		uploadLimit: opts.UploadLimit,
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Middlewares
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	e.Validator = newValidator()
	e.HTTPErrorHandler = s.handleError

	s.register()
	return s
}

func (s *Server) register() {
	g := s.echo.Group("/api")
	g.GET("/health", s.health)
	g.POST("/generate-certificate", s.generateCertificate)
	// Multipart overhead on top of the file itself.
	g.POST("/bulk-generate", s.bulkGenerate,
		middleware.BodyLimit(strconv.FormatInt(s.uploadLimit+64<<10, 10)+"B"))

	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// Handler returns the HTTP handler, for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("starting api server")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"ok":      true,
		"service": ServiceName,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

type messageResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// handleError renders every error as {success:false, message}. Unknown
// routes get {message:"Not found"}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := err.Error()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}

	if code == http.StatusNotFound {
		_ = c.JSON(code, map[string]string{"message": "Not found"})
		return
	}

	if code >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("request error")
	}
	if message == "" {
		message = "Internal server error"
	}
	_ = c.JSON(code, messageResp{Success: false, Message: truncate(message, maxErrorMessage)})
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
