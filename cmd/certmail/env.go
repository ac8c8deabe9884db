package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-certmail/internal/config"
	"github.com/alnah/go-certmail/internal/logger"
)

// Environment holds injectable dependencies for testability.
// Config and Logger are filled in by the root command before any
// subcommand runs.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Config *config.Config
	Logger zerolog.Logger

	// ConfigPath is the --config value, kept for error hints.
	ConfigPath string

	// Build wires the pipeline from Config. Tests swap it for fakes.
	Build func(env *Environment) (*services, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
		Config: config.DefaultConfig(),
		Logger: logger.Nop(),
		Build:  buildServices,
	}
}
