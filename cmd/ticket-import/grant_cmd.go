package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-import/internal/domain"
)

var rightNames = map[string]string{
	"import": domain.RightNameImport,
	"ticket": domain.RightNameTicket,
}

var rightBits = map[string]domain.Right{
	"read":   domain.RightRead,
	"update": domain.RightUpdate,
	"create": domain.RightCreate,
	"delete": domain.RightDelete,
}

func newGrantCmd(open envOpener) *cobra.Command {
	var login, name, actions string
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Set the rights of an account (replaces previous rights)",
		RunE: func(cmd *cobra.Command, args []string) error {
			rightName, ok := rightNames[strings.ToLower(name)]
			if !ok {
				return withCode(exitUsage, fmt.Errorf("unknown --right %q (expected import|ticket)", name))
			}
			rights, err := parseRights(actions)
			if err != nil {
				return withCode(exitUsage, err)
			}
			env, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.close()

			if err := env.auth.Grant(cmd.Context(), login, rightName, rights); err != nil {
				return classify(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s on %s: %d\n", login, rightName, rights)
			return nil
		},
	}
	cmd.Flags().StringVar(&login, "login", "", "Login (required)")
	cmd.Flags().StringVar(&name, "right", "", "import|ticket (required)")
	cmd.Flags().StringVar(&actions, "actions", "read", "Comma separated actions: read,update,create,delete")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("right")
	return cmd
}

func parseRights(raw string) (domain.Right, error) {
	var rights domain.Right
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		bit, ok := rightBits[part]
		if !ok {
			return 0, fmt.Errorf("unknown action %q", part)
		}
		rights |= bit
	}
	return rights, nil
}
