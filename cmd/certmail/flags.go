package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/alnah/go-certmail/internal/config"
)

// renderFlags override render settings for the commands that start Chrome.
type renderFlags struct {
	timeout   time.Duration
	engines   int
	noSandbox bool
}

func (f *renderFlags) register(fs *pflag.FlagSet) {
	fs.DurationVar(&f.timeout, "timeout", 0, "render timeout per certificate (default from config, 30s)")
	fs.IntVar(&f.engines, "engines", 0, "browsers kept for single-certificate requests (default from config, 1)")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox (containers, CI)")
}

// apply copies the flags the user actually set onto cfg.
func (f *renderFlags) apply(fs *pflag.FlagSet, cfg *config.Config) error {
	if fs.Changed("timeout") {
		if f.timeout <= 0 {
			return fmt.Errorf("%w: --timeout must be positive, got %s", ErrUsage, f.timeout)
		}
		cfg.Render.Timeout = f.timeout
	}
	if fs.Changed("engines") {
		if f.engines < 1 || f.engines > config.MaxEngines {
			return fmt.Errorf("%w: --engines must be between 1 and %d, got %d", ErrUsage, config.MaxEngines, f.engines)
		}
		cfg.Render.Engines = f.engines
	}
	if fs.Changed("no-sandbox") {
		cfg.Render.NoSandbox = f.noSandbox
	}
	return nil
}
