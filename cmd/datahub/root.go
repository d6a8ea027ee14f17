package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "datahub",
		Short:         "datahub runs and operates ETL/ELT pipeline definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newRunCmd(app))
	cmd.AddCommand(newCancelCmd(app))
	cmd.AddCommand(newGateCmd(app))
	cmd.AddCommand(newErrorCmd(app))
	cmd.AddCommand(newConsumerCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
