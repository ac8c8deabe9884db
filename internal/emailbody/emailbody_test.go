package emailbody

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const letter = `Dear Participant,

Please find attached your certificate.
See https://example.com for details.

Best regards`

// ---------------------------------------------------------------------------
// TestConverter
// ---------------------------------------------------------------------------

func TestConverter_ToHTML(t *testing.T) {
	t.Parallel()

	got, err := NewConverter().ToHTML(context.Background(), letter)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<p>Dear Participant,</p>",
		`<a href="https://example.com">`,
		"<br />",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ToHTML() missing %q in:\n%s", want, got)
		}
	}
}

func TestConverter_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewConverter().ToHTML(ctx, letter)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestTemplate - Greeting substitution
// ---------------------------------------------------------------------------

func TestTemplate(t *testing.T) {
	t.Parallel()

	tpl, err := Parse(context.Background(), NewConverter(), letter+"\n\nParticipant team", "Participant")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		name     string
		input    string
		wantText string
		wantHTML string
	}{
		{"plain name", "Ada", "Dear Ada,", "Dear Ada,"},
		{"markup escaped in html only", "<b>Eve</b>", "Dear <b>Eve</b>,", "Dear &lt;b&gt;Eve&lt;/b&gt;,"},
		{"quotes escaped", `O'Neil "Bo"`, `Dear O'Neil "Bo",`, "Dear O&#39;Neil &quot;Bo&quot;,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			text := tpl.Text(tt.input)
			if !strings.HasPrefix(text, tt.wantText) {
				t.Errorf("Text() = %q, want prefix %q", text, tt.wantText)
			}
			if !strings.HasSuffix(text, "Participant team") {
				t.Error("Text() replaced more than the first placeholder")
			}
			h := tpl.HTML(tt.input)
			if !strings.Contains(h, tt.wantHTML) {
				t.Errorf("HTML() = %q, want %q", h, tt.wantHTML)
			}
			if !strings.Contains(h, "Participant team") {
				t.Error("HTML() replaced more than the first placeholder")
			}
		})
	}
}

func TestParse_FailureKeepsText(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tpl, err := Parse(ctx, NewConverter(), letter, "Participant")
	if err == nil {
		t.Fatal("Parse() error = nil, want context error")
	}
	if tpl == nil {
		t.Fatal("Parse() returned nil template")
	}
	if got := tpl.HTML("Ada"); got != "" {
		t.Errorf("HTML() = %q, want empty after failed conversion", got)
	}
	if got := tpl.Text("Ada"); !strings.HasPrefix(got, "Dear Ada,") {
		t.Errorf("Text() = %q", got)
	}
}
