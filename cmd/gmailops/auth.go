package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hendrikb/gmailops/internal/auth"
	"github.com/hendrikb/gmailops/internal/display"
)

var authForce bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize Gmail accounts interactively",
	Long: `Run the OAuth2 consent flow for accounts that have no stored token.

Opens a consent URL and waits for the browser redirect on a loopback
listener (five-minute window). The resulting token.json lands next to the
account's credentials.json.`,
	Example: `  gmailops auth
  gmailops auth --account billing@example.com
  gmailops auth --account billing@example.com --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		accounts, err := resolveAccounts()
		if err != nil {
			return err
		}

		for _, acct := range accounts {
			if acct.HasToken() && !authForce {
				if !quietFlag {
					fmt.Printf("  %s — token present, skipping (use --force to re-authorize)\n", acct.Name)
				}
				continue
			}

			if _, err := auth.Authorize(ctx, acct); err != nil {
				return fmt.Errorf("authorize %s: %w", acct.Name, err)
			}

			// Confirm the token works and show who we really are.
			client, err := clientFor(ctx, acct)
			if err != nil {
				return err
			}
			identity, err := client.Profile()
			if err != nil {
				return err
			}
			display.SuccessMsg("%s authorized as %s (%d messages)", acct.Name, identity.Email, identity.MessagesTotal)
		}
		return nil
	},
}

func init() {
	authCmd.Flags().BoolVar(&authForce, "force", false, "Re-run consent even when a token exists")
	rootCmd.AddCommand(authCmd)
}
