package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclecore/internal/config"
	"github.com/terraincognita07/cyclecore/internal/security"
)

func newTokenCommand(options *rootOptions) *cobra.Command {
	var (
		userID uint
		role   string
		ttl    time.Duration
	)
	command := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user",
		Long: `Issue a signed bearer token for the API.

Examples:
  cyclecore token --user 7
  cyclecore token --user 1 --role admin --ttl 2h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := options.loadConfig()
			if err != nil {
				return err
			}
			return RunTokenCommand(cmd.OutOrStdout(), cfg, userID, role, ttl, time.Now())
		},
	}
	command.Flags().UintVar(&userID, "user", 0, "user id the token is issued for")
	command.Flags().StringVar(&role, "role", security.RoleUser, "token role (user or admin)")
	command.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, defaults to auth.token_ttl_hours")
	return command
}

func RunTokenCommand(out io.Writer, cfg *config.Config, userID uint, role string, ttl time.Duration, now time.Time) error {
	if userID == 0 {
		return errors.New("user id is required")
	}
	if role != security.RoleUser && role != security.RoleAdmin {
		return fmt.Errorf("unknown role %q", role)
	}
	if ttl <= 0 {
		ttl = cfg.TokenTTL()
	}

	signingKey, err := cfg.SigningKey()
	if err != nil {
		return err
	}
	token, err := security.IssueToken(signingKey, userID, role, ttl, now)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
