package certmail

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/alnah/go-certmail/internal/assets"
	"github.com/alnah/go-certmail/internal/mailer"
)

// ---------------------------------------------------------------------------
// Test doubles shared by the package tests
// ---------------------------------------------------------------------------

// spyLoader counts loads and serves fixed content.
type spyLoader struct {
	mu          sync.Mutex
	template    string
	image       []byte
	templateErr error
	imageErr    error
	tplReads    int
	imgReads    int
}

func (l *spyLoader) LoadTemplate(string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tplReads++
	return l.template, l.templateErr
}

func (l *spyLoader) LoadImage(string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.imgReads++
	return l.image, l.imageErr
}

func (l *spyLoader) reads() (tpl, img int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tplReads, l.imgReads
}

func newSpyLoader(template string) *spyLoader {
	return &spyLoader{template: template, image: []byte("\x89PNG\r\n\x1a\nfake")}
}

func missingBackgroundLoader(path string) *spyLoader {
	return &spyLoader{
		template: "<p>{{NAME}}</p>",
		imageErr: &assets.NotFoundError{Kind: assets.KindImage, Name: DefaultBackgroundName, Path: path},
	}
}

// fakeRenderer writes the markup it receives to outPath, or fails.
type fakeRenderer struct {
	mu      sync.Mutex
	err     error
	partial bool // write the file before failing
	markups []string
	paths   []string
}

func (r *fakeRenderer) Render(_ context.Context, markup string, _ Size, outPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markups = append(r.markups, markup)
	r.paths = append(r.paths, outPath)
	if r.err != nil {
		if r.partial {
			_ = os.WriteFile(outPath, []byte("%PDF-partial"), 0o600)
		}
		return r.err
	}
	return os.WriteFile(outPath, []byte("%PDF-1.4 "+markup), 0o600)
}

func (r *fakeRenderer) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.markups)
}

// fakeSender records messages and fails for selected recipients.
type fakeSender struct {
	mu     sync.Mutex
	failTo map[string]error
	sent   []*mailer.Message
}

func (s *fakeSender) Send(_ context.Context, msg *mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failTo[msg.To]; err != nil {
		return err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSender) messages() []*mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*mailer.Message(nil), s.sent...)
}

// newTestDelivery returns a DeliveryService backed by s.
func newTestDelivery(s *fakeSender, opts ...Option) *DeliveryService {
	return newDeliveryService(func() (sender, error) { return s, nil }, applyOptions(opts))
}

// stubGenerator returns a fixed error or writes an empty document.
type stubGenerator struct {
	dir   string
	err   error
	calls int
}

func (g *stubGenerator) Generate(_ context.Context, rec Record) (*GeneratedDocument, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	f, err := os.CreateTemp(g.dir, "certificate-*.pdf")
	if err != nil {
		return nil, err
	}
	_ = f.Close()
	return &GeneratedDocument{Path: f.Name()}, nil
}

// stubDeliverer records deliveries and fails for selected recipients.
type stubDeliverer struct {
	mu     sync.Mutex
	failTo map[string]error
	calls  []string
	paths  []string
	block  chan struct{} // when set, Deliver waits for it
}

func (d *stubDeliverer) Deliver(ctx context.Context, email, path, _ string) error {
	if d.block != nil {
		select {
		case <-d.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, email)
	d.paths = append(d.paths, path)
	return d.failTo[email]
}

func (d *stubDeliverer) delivered() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

var errTransport = errors.New("550 5.1.1 mailbox unavailable")
