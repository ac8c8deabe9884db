package certmail

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire(context.Context) (*Engine, error)
	Release(*Engine)
	Size() int
	Close() error
} = (*EnginePool)(nil)

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		engines int
		want    int
	}{
		{
			name:    "explicit takes priority",
			engines: 4,
			want:    4,
		},
		{
			name:    "explicit=1 for a single browser",
			engines: 1,
			want:    1,
		},
		{
			name:    "explicit capped",
			engines: 100,
			want:    MaxPoolSize,
		},
		{
			name:    "zero uses auto calculation",
			engines: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolvePoolSize(tt.engines)
			if got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.engines, got, tt.want)
			}
		})
	}
}

func TestNewEnginePool_MinimumSize(t *testing.T) {
	t.Parallel()

	p := NewEnginePool(0)
	defer func() { _ = p.Close() }()

	if p.Size() != MinPoolSize {
		t.Errorf("Size() = %d, want %d", p.Size(), MinPoolSize)
	}
}

func TestEnginePool_AcquireRelease(t *testing.T) {
	t.Parallel()

	p := NewEnginePool(2)
	defer func() { _ = p.Close() }()
	ctx := context.Background()

	e1, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	e2, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if e1 == e2 {
		t.Fatal("expected distinct engines")
	}

	p.Release(e1)
	e3, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if e3 != e1 {
		t.Error("expected released engine to be reused")
	}
}

func TestEnginePool_AcquireBlocksUntilRelease(t *testing.T) {
	t.Parallel()

	p := NewEnginePool(1)
	defer func() { _ = p.Close() }()

	e, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	var wg sync.WaitGroup
	var got *Engine
	wg.Add(1)
	go func() {
		defer wg.Done()
		got, _ = p.Acquire(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	p.Release(e)
	wg.Wait()

	if got != e {
		t.Error("waiting Acquire did not receive the released engine")
	}
}

func TestEnginePool_AcquireHonoursContext(t *testing.T) {
	t.Parallel()

	p := NewEnginePool(1)
	defer func() { _ = p.Close() }()

	if _, err := p.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, want DeadlineExceeded", err)
	}
}

func TestEnginePool_Closed(t *testing.T) {
	t.Parallel()

	p := NewEnginePool(1)
	e, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	// Release after close must not panic.
	p.Release(e)

	if _, err := p.Acquire(context.Background()); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Acquire() error = %v, want ErrEngineClosed", err)
	}
}
