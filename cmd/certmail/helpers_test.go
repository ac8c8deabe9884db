package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	certmail "github.com/alnah/go-certmail"
	"github.com/alnah/go-certmail/internal/logger"
)

// testEnv returns an Environment reading vars instead of the process
// environment, writing to buffers and using a temp dir for documents.
func testEnv(t *testing.T, vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	all := map[string]string{
		"CERTMAIL_TEMP_DIR": t.TempDir(),
		"LOG_LEVEL":         "disabled",
	}
	for k, v := range vars {
		all[k] = v
	}

	var stdout, stderr bytes.Buffer
	env := DefaultEnv()
	env.Stdout = &stdout
	env.Stderr = &stderr
	env.Getenv = func(k string) string { return all[k] }
	env.Logger = logger.Nop()
	return env, &stdout, &stderr
}

// fakeBuild wires a Batch over g and d instead of Chrome and SMTP.
func fakeBuild(g certmail.DocumentGenerator, d certmail.Deliverer) func(*Environment) (*services, error) {
	return func(env *Environment) (*services, error) {
		return &services{Batch: certmail.NewBatch(g, d, certmail.WithLogger(env.Logger))}, nil
	}
}

// stubGenerator writes a placeholder PDF per record.
type stubGenerator struct {
	dir string
	err error

	mu    sync.Mutex
	paths []string
}

func (g *stubGenerator) Generate(_ context.Context, rec certmail.Record) (*certmail.GeneratedDocument, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	path := filepath.Join(g.dir, rec.Email+".pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o600); err != nil {
		return nil, err
	}
	g.paths = append(g.paths, path)
	return &certmail.GeneratedDocument{Path: path}, nil
}

// stubDeliverer fails for addresses in failTo.
type stubDeliverer struct {
	failTo map[string]string

	mu   sync.Mutex
	sent []string
}

func (d *stubDeliverer) Deliver(_ context.Context, email, _, _ string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if reason, ok := d.failTo[email]; ok {
		return errors.New(reason)
	}
	d.sent = append(d.sent, email)
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
