package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	certmail "github.com/alnah/go-certmail"
)

func newSendCmd(env *Environment) *cobra.Command {
	var (
		rec certmail.Record
		rf  renderFlags
	)

	cmd := &cobra.Command{
		Use:     "send",
		Short:   "Generate one certificate and email it",
		Example: `  certmail send --name "Ada Lovelace" --email ada@example.com`,
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec.Name = strings.TrimSpace(rec.Name)
			rec.Email = strings.TrimSpace(rec.Email)
			if rec.Email == "" {
				return fmt.Errorf("%w: --email is required", ErrUsage)
			}
			if err := rf.apply(cmd.Flags(), env.Config); err != nil {
				return err
			}

			svc, err := env.Build(env)
			if err != nil {
				return err
			}
			// Close waits for the detached delivery.
			defer func() { _ = svc.Close() }()

			if err := svc.Batch.Issue(cmd.Context(), rec); err != nil {
				return err
			}
			cmd.Printf("Certificate generated for %s, sending to %s\n", rec.DisplayName(), rec.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&rec.Name, "name", "", "participant name")
	cmd.Flags().StringVar(&rec.Email, "email", "", "recipient address")
	rf.register(cmd.Flags())
	return cmd
}
