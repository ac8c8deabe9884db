package certmail

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/alnah/go-certmail/internal/emailbody"
	"github.com/alnah/go-certmail/internal/mailer"
	"github.com/alnah/go-certmail/internal/metrics"
)

// Certificate email content.
const (
	Subject        = "Your Certificate of Participation"
	AttachmentName = "certificate.pdf"

	// bodyTemplate greets DefaultName; the first occurrence is replaced by
	// the recipient name.
	bodyTemplate = `Dear Participant,

Please find attached your Certificate of Participation.

Thank you for your participation.

Best regards, Enlivo Technologies
`
	pdfContentType = "application/pdf"
)

// MailConfig selects and configures the email transport.
type MailConfig struct {
	Provider     string // "smtp" (default) or "brevo"
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	BrevoAPIKey  string
	BrevoBaseURL string // empty = production API
}

// sender abstracts the transport to enable testing without a mail server.
type sender interface {
	Send(ctx context.Context, msg *mailer.Message) error
}

// DeliveryService emails generated certificates. The transport is built on
// first use and reused afterwards; a failed build is retried on the next call.
type DeliveryService struct {
	newTransport func() (sender, error)
	from         string
	limiter      *rate.Limiter
	logger       zerolog.Logger

	mu        sync.Mutex
	transport sender

	body *emailbody.Template
}

// NewDeliveryService creates a DeliveryService for cfg. No connection is made
// until the first delivery.
func NewDeliveryService(cfg MailConfig, opts ...Option) *DeliveryService {
	s := applyOptions(opts)
	if s.from == "" {
		s.from = cfg.SMTPUser
	}
	from := s.from
	return newDeliveryService(func() (sender, error) {
		return mailer.New(mailer.Options{
			Provider:     cfg.Provider,
			From:         from,
			SMTPHost:     cfg.SMTPHost,
			SMTPPort:     cfg.SMTPPort,
			SMTPUser:     cfg.SMTPUser,
			SMTPPassword: cfg.SMTPPassword,
			BrevoAPIKey:  cfg.BrevoAPIKey,
			BrevoBaseURL: cfg.BrevoBaseURL,
		})
	}, s)
}

func newDeliveryService(factory func() (sender, error), s settings) *DeliveryService {
	d := &DeliveryService{
		newTransport: factory,
		from:         s.from,
		logger:       s.logger,
	}

	body, err := emailbody.Parse(context.Background(), emailbody.NewConverter(), bodyTemplate, DefaultName)
	if err != nil {
		d.logger.Warn().Err(err).Msg("rendering HTML email body, sending plain text only")
	}
	d.body = body

	if s.sendRate > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(s.sendRate), 1)
	}
	return d
}

// Deliver emails the PDF at documentPath to email, greeting recipientName
// (DefaultName when empty). It makes exactly one attempt. Missing transport
// settings match ErrConfiguration; everything else matches ErrDelivery.
func (d *DeliveryService) Deliver(ctx context.Context, email, documentPath, recipientName string) error {
	t, err := d.getTransport()
	if err != nil {
		return err
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			metrics.IncDelivered(false)
			return wrapCause(ErrDelivery, err)
		}
	}

	pdf, err := os.ReadFile(documentPath) // #nosec G304 -- path comes from the Generator
	if err != nil {
		metrics.IncDelivered(false)
		return wrapCause(ErrDelivery, fmt.Errorf("reading %s: %w", documentPath, err))
	}

	name := strings.TrimSpace(recipientName)
	if name == "" {
		name = DefaultName
	}

	msg := &mailer.Message{
		From:    d.from,
		To:      email,
		Subject: Subject,
		Text:    d.body.Text(name),
		HTML:    d.body.HTML(name),
		Attachments: []mailer.Attachment{
			{Name: AttachmentName, ContentType: pdfContentType, Content: pdf},
		},
	}

	if err := t.Send(ctx, msg); err != nil {
		metrics.IncDelivered(false)
		return wrapCause(ErrDelivery, err)
	}

	metrics.IncDelivered(true)
	d.logger.Info().Str("to", email).Str("attachment", documentPath).Msg("email sent")
	return nil
}

// Validate builds the transport without sending, surfacing configuration
// errors early.
func (d *DeliveryService) Validate() error {
	_, err := d.getTransport()
	return err
}

func (d *DeliveryService) getTransport() (sender, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transport != nil {
		return d.transport, nil
	}

	t, err := d.newTransport()
	if err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) || errors.Is(err, mailer.ErrUnknownProvider) {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		return nil, wrapCause(ErrDelivery, err)
	}
	d.transport = t
	return t, nil
}
