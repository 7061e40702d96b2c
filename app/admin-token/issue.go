package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"aiInsider/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newIssueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed admin JWT",
		Long: `Issue a bearer token accepted by /api/v1/admin routes.

The signing secret is read from JWT_SECRET (a .env file in the working
directory is loaded first).

Examples:
  admin-token issue --user ops@aiinsider --ttl 12h
  admin-token issue --user ci --role ADMIN --ttl 30m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			role, _ := cmd.Flags().GetString("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			if strings.TrimSpace(user) == "" {
				return errors.New("--user is required")
			}
			if ttl <= 0 {
				return errors.New("--ttl must be positive")
			}

			_ = godotenv.Load()
			token, err := utils.GenerateJWT(user, strings.ToUpper(role), os.Getenv("JWT_SECRET"), ttl)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().String("user", "", "operator id stored in the token")
	cmd.Flags().String("role", "ADMIN", "role claim")
	cmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	return cmd
}
