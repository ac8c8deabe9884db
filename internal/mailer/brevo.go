package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const brevoBaseURL = "https://api.brevo.com"

// Brevo sends through the Brevo transactional email HTTP API.
type Brevo struct {
	apiKey  string
	from    string
	baseURL string
	http    *http.Client
}

// NewBrevo validates the API key and sender address and builds the client.
func NewBrevo(opts Options) (*Brevo, error) {
	if opts.BrevoAPIKey == "" {
		return nil, fmt.Errorf("%w: BREVO_API_KEY must be set for the brevo provider", ErrNotConfigured)
	}
	if strings.TrimSpace(opts.From) == "" {
		return nil, fmt.Errorf("%w: brevo requires a sender address (SMTP_FROM)", ErrNotConfigured)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	base := opts.BrevoBaseURL
	if base == "" {
		base = brevoBaseURL
	}
	return &Brevo{
		apiKey:  opts.BrevoAPIKey,
		from:    strings.TrimSpace(opts.From),
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: opts.Timeout},
	}, nil
}

type brevoAddress struct {
	Email string `json:"email"`
}

type brevoAttachment struct {
	Name    string `json:"name"`
	Content string `json:"content"` // base64
}

type brevoEmail struct {
	Sender      brevoAddress      `json:"sender"`
	To          []brevoAddress    `json:"to"`
	Subject     string            `json:"subject"`
	TextContent string            `json:"textContent"`
	HTMLContent string            `json:"htmlContent,omitempty"`
	Attachment  []brevoAttachment `json:"attachment,omitempty"`
}

// Send posts msg to the Brevo API. An empty msg.From uses the configured sender.
func (b *Brevo) Send(ctx context.Context, msg *Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	from := msg.From
	if from == "" {
		from = b.from
	}

	payload := brevoEmail{
		Sender:      brevoAddress{Email: from},
		To:          []brevoAddress{{Email: msg.To}},
		Subject:     msg.Subject,
		TextContent: msg.Text,
		HTMLContent: msg.HTML,
	}
	for _, a := range msg.Attachments {
		payload.Attachment = append(payload.Attachment, brevoAttachment{
			Name:    a.Name,
			Content: base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encoding request: %v", ErrSend, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v3/smtp/email", bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", b.apiKey)

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: brevo responded %s: %s", ErrSend, resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

// Compile-time interface check.
var _ Sender = (*Brevo)(nil)
