package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	certmail "github.com/alnah/go-certmail"
)

// Batch command errors.
var (
	ErrReadRoster     = errors.New("failed to read roster")
	ErrNoParticipants = errors.New("no valid participants found (expected columns: name, email)")
	ErrRecordsFailed  = errors.New("some certificates were not delivered")
)

func newBatchCmd(env *Environment) *cobra.Command {
	var rf renderFlags

	cmd := &cobra.Command{
		Use:   "batch FILE.csv",
		Short: "Generate and email a certificate for every row of a CSV file",
		Long: `batch reads a CSV roster with name and email columns, then generates and
emails one certificate per row, in order. The JSON summary is written to
stdout. Records that fail are listed in the summary and do not stop the run.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rf.apply(cmd.Flags(), env.Config); err != nil {
				return err
			}
			ctx, stop := notifyContext(cmd.Context())
			defer stop()

			records, err := readRoster(args[0])
			if err != nil {
				return err
			}

			svc, err := env.Build(env)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			summary, runErr := svc.Batch.Run(ctx, records)
			if summary != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(summary); err != nil {
					return err
				}
			}
			if runErr != nil {
				return runErr
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%w: %d of %d", ErrRecordsFailed, summary.Failed, summary.Total)
			}
			return nil
		},
	}
	rf.register(cmd.Flags())
	return cmd
}

func readRoster(path string) ([]certmail.Record, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided roster
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadRoster, err)
	}
	defer func() { _ = f.Close() }()

	records, err := certmail.ParseRecords(f)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoParticipants, path)
	}
	return records, nil
}
