package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/alnah/go-certmail/internal/config"
	"github.com/alnah/go-certmail/internal/logger"
)

// ErrUsage marks invalid flags or arguments.
var ErrUsage = errors.New("usage error")

// newRootCmd builds the command tree bound to env.
func newRootCmd(env *Environment) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "certmail",
		Short: "Generate PDF certificates and email them to participants",
		Long: `certmail fills an HTML certificate template with each participant's name,
renders it to PDF in headless Chrome and sends it as an email attachment.

Configuration comes from an optional YAML file (--config), a .env file in the
working directory and environment variables, in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg, err := config.Load(env.ConfigPath, env.Getenv)
			if err != nil {
				return err
			}
			env.Config = cfg

			level := cfg.App.LogLevel
			if verbose {
				level = zerolog.LevelDebugValue
			}
			env.Logger = logger.New(cfg.App.Env, level, env.Stderr)
			return nil
		},
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)

	root.PersistentFlags().StringVar(&env.ConfigPath, "config", "", "config file (YAML)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newServeCmd(env),
		newSendCmd(env),
		newBatchCmd(env),
		newDoctorCmd(env),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		// Skip config loading.
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("certmail version %s\n", Version)
		},
	}
}

// usageArgs wraps an argument validator so its errors map to ExitUsage.
func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return nil
	}
}
