package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oronts/datahub/internal/domain/record"
)

func newErrorCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "error",
		Short: "Operate on quarantined record errors",
	}

	var patchJSON, userID string
	retry := &cobra.Command{
		Use:   "retry [error-id]",
		Short: "Retry a quarantined record, optionally patching its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := record.Record{}
			if patchJSON != "" {
				if err := json.Unmarshal([]byte(patchJSON), &patch); err != nil {
					return fmt.Errorf("parse --patch: %w", err)
				}
			}
			res, err := app.Run.RetryError(app.CommandContext(cmd), args[0], patch, userID)
			return printResult(cmd, res, err)
		},
	}
	retry.Flags().StringVar(&patchJSON, "patch", "", "JSON object merged onto the record before retry")
	retry.Flags().StringVar(&userID, "user", "", "identifier of the operator retrying the record")

	var clear bool
	deadLetter := &cobra.Command{
		Use:   "dead-letter [error-id]",
		Short: "Mark or clear a quarantined record's dead-letter flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Run.MarkDeadLetter(app.CommandContext(cmd), args[0], !clear)
			return printResult(cmd, res, err)
		},
	}
	deadLetter.Flags().BoolVar(&clear, "clear", false, "clear the dead-letter flag instead of setting it")

	resolve := &cobra.Command{
		Use:   "resolve [error-id]",
		Short: "Mark a quarantined record as resolved after a successful resubmission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Run.ResolveError(app.CommandContext(cmd), args[0])
			return printResult(cmd, res, err)
		},
	}

	cmd.AddCommand(retry, deadLetter, resolve)
	return cmd
}
