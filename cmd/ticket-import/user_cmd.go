package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-import/internal/domain"
)

func newUserCmd(open envOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserAddCmd(open))
	cmd.AddCommand(newUserPasswdCmd(open))
	return cmd
}

func newUserAddCmd(open envOpener) *cobra.Command {
	var (
		user     domain.User
		password string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return withCode(exitUsage, errors.New("--password is required"))
			}
			env, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.close()

			if err := env.auth.CreateUser(cmd.Context(), &user, password); err != nil {
				return classify(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s created with id %d\n", user.Login, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&user.Login, "login", "", "Login (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	cmd.Flags().StringVar(&user.RealName, "realname", "", "Last name")
	cmd.Flags().StringVar(&user.FirstName, "firstname", "", "First name")
	cmd.Flags().StringVar(&user.Email, "email", "", "Email")
	cmd.Flags().Int64Var(&user.EntityID, "entity", 0, "Default entity id")
	_ = cmd.MarkFlagRequired("login")
	return cmd
}

func newUserPasswdCmd(open envOpener) *cobra.Command {
	var login, password string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Replace the password of an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(password) == "" {
				return withCode(exitUsage, errors.New("--password is required"))
			}
			env, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.close()

			if err := env.auth.SetPassword(cmd.Context(), login, password); err != nil {
				return classify(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password of %s updated\n", login)
			return nil
		},
	}
	cmd.Flags().StringVar(&login, "login", "", "Login (required)")
	cmd.Flags().StringVar(&password, "password", "", "New password (required)")
	_ = cmd.MarkFlagRequired("login")
	return cmd
}
