package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-import/internal/auth"
)

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password (read from stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return withCode(exitUsage, errors.New("no password on stdin"))
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return withCode(exitValidation, errors.New("password must not be empty"))
			}
			hash, err := auth.HashPassword(password, cost)
			if err != nil {
				return withCode(exitValidation, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 12, "bcrypt cost")
	return cmd
}
