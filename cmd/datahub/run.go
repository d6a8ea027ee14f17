package main

import (
	"github.com/spf13/cobra"
)

func newRunCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [pipeline-path]",
		Short: "Run a pipeline definition start to finish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Run.RunPipeline(app.CommandContext(cmd), args[0])
			return printResult(cmd, res, err)
		},
	}
	return cmd
}

func newCancelCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel [run-id]",
		Short: "Request cancellation of a running pipeline run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Run.CancelRun(app.CommandContext(cmd), args[0])
			return printResult(cmd, res, err)
		},
	}
	return cmd
}

func newGateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Resolve a paused GATE step",
	}

	approve := &cobra.Command{
		Use:   "approve [run-id] [step-key]",
		Short: "Approve a paused gate and resume the run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Run.ApproveGate(app.CommandContext(cmd), args[0], args[1])
			return printResult(cmd, res, err)
		},
	}

	reject := &cobra.Command{
		Use:   "reject [run-id] [step-key]",
		Short: "Reject a paused gate and cancel the run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Run.RejectGate(app.CommandContext(cmd), args[0], args[1])
			return printResult(cmd, res, err)
		},
	}

	cmd.AddCommand(approve, reject)
	return cmd
}
