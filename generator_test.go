package certmail

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestGenerator(t *testing.T, loader AssetLoader, r Renderer) (*Generator, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "out")
	return NewGenerator(NewAssetCache(loader), r, WithTempDir(dir)), dir
}

// ---------------------------------------------------------------------------
// TestFillTemplate - Placeholder substitution
// ---------------------------------------------------------------------------

func TestFillTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tpl  string
		who  string
		want string
	}{
		{
			name: "every occurrence replaced",
			tpl:  "{{NAME}}|{{NAME}}|{{WIDTH}}x{{HEIGHT}}|{{WIDTH}}|{{BACKGROUND_IMAGE_URL}}|{{BACKGROUND_IMAGE_URL}}",
			who:  "Ada",
			want: "Ada|Ada|1200x800|1200|data:x|data:x",
		},
		{
			name: "name escaped",
			tpl:  "<h1>{{NAME}}</h1>",
			who:  `<script>alert("x")</script>`,
			want: "<h1>&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;</h1>",
		},
		{
			name: "ampersand and apostrophe escaped",
			tpl:  "{{NAME}}",
			who:  "Tom & Jerry's",
			want: "Tom &amp; Jerry&#39;s",
		},
		{
			name: "other content untouched",
			tpl:  "<style>{{ unrelated }}</style>{NAME}",
			who:  "Ada",
			want: "<style>{{ unrelated }}</style>{NAME}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fillTemplate(tt.tpl, tt.who, Size{Width: 1200, Height: 800}, "data:x")
			if got != tt.want {
				t.Errorf("fillTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestGenerator_Generate
// ---------------------------------------------------------------------------

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{}
	g, dir := newTestGenerator(t, newSpyLoader("<h1>{{NAME}}</h1><p>{{NAME}}</p><img src=\"{{BACKGROUND_IMAGE_URL}}\">"), r)

	doc, err := g.Generate(context.Background(), Record{Name: "<script>x</script>", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if filepath.Dir(doc.Path) != dir {
		t.Errorf("document written to %q, want under %q", doc.Path, dir)
	}
	base := filepath.Base(doc.Path)
	if !strings.HasPrefix(base, "certificate-_script_x__script_-") || !strings.HasSuffix(base, ".pdf") {
		t.Errorf("file name = %q", base)
	}

	markup := r.markups[0]
	if strings.Count(markup, "&lt;script&gt;x&lt;/script&gt;") != 2 {
		t.Errorf("escaped name should appear twice in %q", markup)
	}
	if strings.Contains(markup, "<script>") {
		t.Error("raw script tag reached the markup")
	}
	if !strings.Contains(markup, `src="data:image/png;base64,`) {
		t.Error("background data URL not substituted")
	}
}

func TestGenerator_DefaultName(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{}
	g, _ := newTestGenerator(t, newSpyLoader("{{NAME}}"), r)

	doc, err := g.Generate(context.Background(), Record{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if r.markups[0] != DefaultName {
		t.Errorf("markup = %q, want %q", r.markups[0], DefaultName)
	}
	if !strings.HasPrefix(filepath.Base(doc.Path), "certificate-cert-") {
		t.Errorf("file name = %q, want cert fallback", filepath.Base(doc.Path))
	}
}

func TestGenerator_UniquePaths(t *testing.T) {
	t.Parallel()

	g, _ := newTestGenerator(t, newSpyLoader("{{NAME}}"), &fakeRenderer{})
	seen := make(map[string]bool)

	for range 50 {
		doc, err := g.Generate(context.Background(), Record{Name: "Same Name", Email: "a@x.com"})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if seen[doc.Path] {
			t.Fatalf("duplicate path %q", doc.Path)
		}
		seen[doc.Path] = true
	}
}

func TestGenerator_MissingBackground(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{}
	g, dir := newTestGenerator(t, missingBackgroundLoader("/nowhere/certificate-bg.png"), r)

	doc, err := g.Generate(context.Background(), Record{Name: "Ada", Email: "a@x.com"})
	if !errors.Is(err, ErrMissingAsset) {
		t.Fatalf("Generate() error = %v, want ErrMissingAsset", err)
	}
	if doc != nil {
		t.Error("expected nil document")
	}
	if r.calls() != 0 {
		t.Errorf("renderer called %d times, want 0", r.calls())
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("output directory has %d files, want 0", len(entries))
	}
}

func TestGenerator_RenderFailureRemovesPartialFile(t *testing.T) {
	t.Parallel()

	cause := errors.New("page crashed")
	r := &fakeRenderer{err: cause, partial: true}
	g, _ := newTestGenerator(t, newSpyLoader("{{NAME}}"), r)

	_, err := g.Generate(context.Background(), Record{Name: "Ada", Email: "a@x.com"})
	if !errors.Is(err, ErrRender) {
		t.Fatalf("Generate() error = %v, want ErrRender", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable")
	}
	if err.Error() != cause.Error() {
		t.Errorf("error message = %q, want %q", err.Error(), cause.Error())
	}
	if _, statErr := os.Stat(r.paths[0]); !os.IsNotExist(statErr) {
		t.Errorf("partial file %q still exists", r.paths[0])
	}
}

func TestGenerator_InvalidSize(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{}
	g := NewGenerator(NewAssetCache(newSpyLoader("x")), r, WithSize(0, 800), WithTempDir(t.TempDir()))

	_, err := g.Generate(context.Background(), Record{Name: "Ada", Email: "a@x.com"})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("Generate() error = %v, want ErrConfiguration", err)
	}
	if r.calls() != 0 {
		t.Error("renderer should not be called")
	}
}
