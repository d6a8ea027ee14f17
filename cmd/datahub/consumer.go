package main

import (
	"github.com/spf13/cobra"
)

func newConsumerCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consumer",
		Short: "Control a trigger pipeline's message-queue consumer",
	}

	start := &cobra.Command{
		Use:   "start [pipeline-code]",
		Short: "Start consuming messages for pipelineCode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Run.StartConsumer(app.CommandContext(cmd), args[0])
			return printResult(cmd, res, err)
		},
	}

	stop := &cobra.Command{
		Use:   "stop [pipeline-code]",
		Short: "Stop consuming messages for pipelineCode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Run.StopConsumer(app.CommandContext(cmd), args[0])
			return printResult(cmd, res, err)
		},
	}

	cmd.AddCommand(start, stop)
	return cmd
}
