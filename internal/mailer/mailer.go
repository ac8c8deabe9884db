// Package mailer sends messages with attachments through SMTP or the Brevo API.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for transport construction and sending.
var (
	ErrNotConfigured   = errors.New("email transport not configured")
	ErrUnknownProvider = errors.New("unknown email provider")
	ErrSend            = errors.New("sending email failed")
)

// DefaultTimeout bounds one send, connection included.
const DefaultTimeout = 30 * time.Second

// Message is one outbound email.
type Message struct {
	From        string
	To          string
	Subject     string
	Text        string
	HTML        string // optional alternative part
	Attachments []Attachment
}

// Attachment is a file carried in memory.
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// Sender delivers one message per call. Implementations do not retry.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Options selects and configures a transport.
type Options struct {
	Provider string // "smtp" (default) or "brevo"
	Timeout  time.Duration
	From     string // default sender; required by brevo

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	BrevoAPIKey  string
	BrevoBaseURL string // empty = production API
}

// New builds the transport named by opts.Provider, failing with
// ErrNotConfigured when its credentials are missing.
func New(opts Options) (Sender, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	switch strings.ToLower(opts.Provider) {
	case "", "smtp":
		return NewSMTP(opts)
	case "brevo":
		return NewBrevo(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
}

func (m *Message) validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil message", ErrSend)
	}
	if m.To == "" {
		return fmt.Errorf("%w: empty recipient", ErrSend)
	}
	return nil
}
