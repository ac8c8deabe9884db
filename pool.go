package certmail

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one engine is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// EnginePool manages several Engines so single-record requests can render in
// parallel, never more than one render per browser.
// Engines are created lazily on first acquire to avoid startup delay.
type EnginePool struct {
	size    int
	opts    []Option
	engines []*Engine
	sem     chan *Engine
	mu      sync.Mutex
	created int
	closed  bool
}

// NewEnginePool creates a pool with capacity for n engines. opts are passed
// to every engine.
func NewEnginePool(n int, opts ...Option) *EnginePool {
	if n < MinPoolSize {
		n = MinPoolSize
	}

	return &EnginePool{
		size:    n,
		opts:    opts,
		engines: make([]*Engine, 0, n),
		sem:     make(chan *Engine, n),
	}
}

// Acquire gets an engine from the pool, creating one if needed.
// Blocks until an engine is released or ctx is done.
func (p *EnginePool) Acquire(ctx context.Context) (*Engine, error) {
	// Try to get an existing engine (non-blocking)
	select {
	case e, ok := <-p.sem:
		if !ok {
			return nil, ErrEngineClosed
		}
		return e, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrEngineClosed
	}
	if p.created < p.size {
		p.created++
		e := NewEngine(p.opts...)
		p.engines = append(p.engines, e)
		p.mu.Unlock()
		return e, nil
	}
	p.mu.Unlock()

	// All engines created, wait for one to be released
	select {
	case e, ok := <-p.sem:
		if !ok {
			return nil, ErrEngineClosed
		}
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns an engine to the pool.
// The lock is held while sending; the channel has room for every engine so
// the send never blocks.
func (p *EnginePool) Release(e *Engine) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- e
}

// Render acquires an engine, renders, and releases it.
func (p *EnginePool) Render(ctx context.Context, markup string, size Size, outPath string) error {
	e, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(e)

	return e.Render(ctx, markup, size, outPath)
}

// Close releases all browser resources.
// Returns an aggregated error if multiple engines fail to close.
func (p *EnginePool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	engines := p.engines
	p.mu.Unlock()

	var errs []error
	for _, e := range engines {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *EnginePool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit engines > GOMAXPROCS-based calculation.
func ResolvePoolSize(engines int) int {
	if engines > 0 {
		return min(engines, MaxPoolSize)
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
