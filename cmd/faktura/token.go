package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nurpe/faktura/internal/auth"
	"github.com/nurpe/faktura/internal/model"
)

func newTokenCommand(a *app) *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(strings.TrimSpace(userID))
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			token, err := auth.NewIssuer(a.cfg.Auth.AccessSecret).Issue(model.Principal{
				UserID: id,
				Email:  strings.TrimSpace(email),
			}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (uuid) the token is issued for")
	cmd.Flags().StringVar(&email, "email", "", "optional email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
