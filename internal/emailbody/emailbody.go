// Package emailbody renders the Markdown email body into the plain-text and
// HTML parts of a message, with a greeting placeholder filled per recipient.
package emailbody

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// htmlTemplate wraps Goldmark's fragment output in a complete HTML5 document.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
</head>
<body style="font-family: Arial, Helvetica, sans-serif; line-height: 1.5;">
%s
</body>
</html>`

// htmlEscaper escapes a recipient name for the HTML part.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Converter converts Markdown to HTML using goldmark.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter creates a Converter with autolinks and hard line breaks,
// which suits short letters better than document rendering.
func NewConverter() *Converter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	return &Converter{md: md}
}

// ToHTML converts Markdown content to a standalone HTML5 document.
// Goldmark does not take a context, so conversion runs in a goroutine and
// ctx only bounds the wait.
func (c *Converter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: fmt.Sprintf(htmlTemplate, buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// Template is an email body with one greeting placeholder.
type Template struct {
	text        string
	html        string
	placeholder string
}

// Parse renders markdown once. The first occurrence of placeholder is later
// replaced by the recipient name. On error the returned Template is still
// usable and yields plain text only.
func Parse(ctx context.Context, c *Converter, markdown, placeholder string) (*Template, error) {
	t := &Template{text: markdown, placeholder: placeholder}
	out, err := c.ToHTML(ctx, markdown)
	if err != nil {
		return t, err
	}
	t.html = out
	return t, nil
}

// Text returns the plain-text part greeting name.
func (t *Template) Text(name string) string {
	return strings.Replace(t.text, t.placeholder, name, 1)
}

// HTML returns the HTML part greeting name, or "" when conversion failed.
// The name is escaped after rendering so it is never read as markup.
func (t *Template) HTML(name string) string {
	if t.html == "" {
		return ""
	}
	return strings.Replace(t.html, t.placeholder, htmlEscaper.Replace(name), 1)
}
