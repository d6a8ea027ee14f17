package main

import (
	"fmt"

	"github.com/spf13/cobra"

	applicationrun "github.com/oronts/datahub/internal/application/run"
)

// printResult renders an operational command's Result the way every
// subcommand in this tree reports success or failure, returning a non-nil
// error for failed results so cobra exits non-zero.
func printResult(cmd *cobra.Command, res applicationrun.Result, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	if !res.Success {
		return fmt.Errorf("%s", res.Message)
	}
	return nil
}
