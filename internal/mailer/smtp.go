package mailer

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/wneessen/go-mail"
)

// SMTP sends through an authenticated SMTP relay. Port 465 uses implicit
// TLS; any other port upgrades with STARTTLS, which is mandatory.
type SMTP struct {
	mu     sync.Mutex
	client *mail.Client
	from   string
}

// NewSMTP validates credentials and builds the client. No connection is
// opened until the first Send.
func NewSMTP(opts Options) (*SMTP, error) {
	if opts.SMTPUser == "" || opts.SMTPPassword == "" {
		return nil, fmt.Errorf("%w: SMTP_USER and SMTP_PASS must be set for sending emails", ErrNotConfigured)
	}
	if opts.SMTPHost == "" {
		return nil, fmt.Errorf("%w: SMTP host is empty", ErrNotConfigured)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	clientOpts := []mail.Option{
		mail.WithPort(opts.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(opts.SMTPUser),
		mail.WithPassword(opts.SMTPPassword),
		mail.WithTimeout(opts.Timeout),
	}
	if opts.SMTPPort == 465 {
		clientOpts = append(clientOpts, mail.WithSSL())
	} else {
		clientOpts = append(clientOpts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(opts.SMTPHost, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}
	return &SMTP{client: client, from: opts.SMTPUser}, nil
}

// Send dials, authenticates, and delivers msg. Sends are serialized.
func (s *SMTP) Send(ctx context.Context, msg *Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	m, err := s.build(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	return nil
}

// build converts msg into a go-mail message.
func (s *SMTP) build(msg *Message) (*mail.Msg, error) {
	from := msg.From
	if from == "" {
		from = s.from
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("%w: invalid sender %q: %v", ErrSend, from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("%w: invalid recipient %q: %v", ErrSend, msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	for _, a := range msg.Attachments {
		var fileOpts []mail.FileOption
		if a.ContentType != "" {
			fileOpts = append(fileOpts, mail.WithFileContentType(mail.ContentType(a.ContentType)))
		}
		if err := m.AttachReader(a.Name, bytes.NewReader(a.Content), fileOpts...); err != nil {
			return nil, fmt.Errorf("%w: attaching %s: %v", ErrSend, a.Name, err)
		}
	}
	return m, nil
}

// Compile-time interface check.
var _ Sender = (*SMTP)(nil)
