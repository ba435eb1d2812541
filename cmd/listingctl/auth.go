package main

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/estate/listings/internal/infrastructure/auth"
)

func newTokenCmd(a *app) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin bearer token for scripts",
		Long: `token signs an admin JWT with the configured jwt.secret, skipping the
password check. Anyone who can read the config can already do this.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return errors.New("jwt.secret is not configured")
			}
			if username == "" {
				username = cfg.Admin.Username
			}
			tok, err := auth.NewJWTService(cfg.JWT).GenerateToken(username)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", tok.AccessToken)
			printf(cmd.ErrOrStderr(), "expires %s\n", tok.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Token subject (default: admin.username)")
	return cmd
}

func newHashPasswordCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash for admin.password_hash",
		Long: `hash-password hashes the given password, or the first line of stdin
when no argument is passed, for use as admin.password_hash.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no password on stdin")
				}
				password = strings.TrimRight(line, "\r\n")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", hash)
			return nil
		},
	}
}
