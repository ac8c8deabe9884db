package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-certmail/internal/httpapi"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

func newServeCmd(env *Environment) *cobra.Command {
	var (
		addr string
		rf   renderFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rf.apply(cmd.Flags(), env.Config); err != nil {
				return err
			}
			ctx, stop := notifyContext(cmd.Context())
			defer stop()

			if addr == "" {
				addr = env.Config.Addr()
			}
			return runServe(ctx, env, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :PORT)")
	rf.register(cmd.Flags())
	return cmd
}

// runServe serves until ctx is cancelled or the listener fails.
func runServe(ctx context.Context, env *Environment, addr string) error {
	svc, err := env.Build(env)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			env.Logger.Warn().Err(err).Msg("closing pipeline")
		}
	}()

	// Requests report missing assets themselves; this only warns early.
	if err := svc.Assets.Preload(ctx); err != nil {
		env.Logger.Warn().Err(err).Msg("certificate assets not ready")
	}

	srv := httpapi.New(httpapi.Options{
		Pipeline:    svc.Batch,
		Logger:      env.Logger,
		UploadDir:   filepath.Join(env.Config.Paths.Temp, "uploads"),
		UploadLimit: env.Config.Server.UploadLimit,
		CORSOrigins: env.Config.Server.CORSOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	env.Logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		env.Logger.Error().Err(err).Msg("server forced to shutdown")
		return err
	}
	return <-errCh
}
