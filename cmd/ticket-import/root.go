package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd(open envOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ticket-import",
		Short:         "Bulk-create tickets from CSV files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newRunCmd(open))
	cmd.AddCommand(newFieldsCmd())
	cmd.AddCommand(newHashPasswordCmd())
	cmd.AddCommand(newUserCmd(open))
	cmd.AddCommand(newGrantCmd(open))
	cmd.AddCommand(newCatalogCmd(open))
	return cmd
}

func Execute() {
	if err := newRootCmd(openEnv).Execute(); err != nil {
		code := exitCode(err)
		if code == 1 {
			// cobra flag and argument errors
			code = exitUsage
		}
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
