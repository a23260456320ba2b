package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-import/internal/importer"
)

func newFieldsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List importable fields and the sample header",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{
					"fields":        importer.Fields(),
					"sample_header": importer.SampleHeader(),
				})
			}
			for _, f := range importer.Fields() {
				fmt.Fprintf(out, "%-16s %s\n", f.Name, f.Label)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, strings.Join(importer.SampleHeader(), ","))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
