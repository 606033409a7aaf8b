package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hendrikb/gmailops/internal/display"
	"github.com/hendrikb/gmailops/internal/fetch"
	"github.com/hendrikb/gmailops/internal/state"
)

var (
	fetchSince string
	fetchMax   int64
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch emails with attachments into a folder tree",
	Long: `Fetch emails in a date window and write one folder per email:
body.txt, metadata.json and the kept attachments. Decorative attachments
(tracking pixels, logos, signature images) are filtered out.

Without --since the window starts at the account's last sync.`,
	Example: `  gmailops fetch --since 2026-01-01
  gmailops fetch --account billing@example.com --since 2026-01-01 --max 50
  gmailops fetch --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		accounts, err := resolveAccounts()
		if err != nil {
			return err
		}

		store, err := state.Load(cfg.StatePath)
		if err != nil {
			return err
		}

		var results []*fetch.Result
		var failed int
		for _, acct := range accounts {
			client, err := clientFor(ctx, acct)
			if err != nil {
				if accountFlag != "" {
					return err
				}
				display.ErrorMsg("%s — %v, skipping", acct.Name, err)
				failed++
				continue
			}

			identity, err := client.Profile()
			if err != nil {
				if accountFlag != "" {
					return fmt.Errorf("%s: profile lookup: %w", acct.Name, err)
				}
				display.ErrorMsg("%s — profile lookup failed: %v, skipping", acct.Name, err)
				failed++
				continue
			}
			st := store.Account(identity.Email)

			since, err := resolveSince(fetchSince, st.LastSync)
			if err != nil {
				return err
			}

			runner := &fetch.Runner{Box: client, Log: logger.With("account", identity.Email)}
			result, err := runner.Run(fetch.Options{
				Account:   identity.Email,
				OutputDir: cfg.OutputDir,
				Since:     since,
				Max:       maxOrDefault(fetchMax),
			})
			if err != nil {
				display.ErrorMsg("%s — fetch failed: %v", identity.Email, err)
				failed++
				continue
			}

			st.LastSync = time.Now().UTC()
			st.Fetched += result.Fetched
			st.Attachments += result.Attachments
			if err := store.Save(); err != nil {
				return err
			}

			if _, err := fetch.WriteSummary(cfg.LogDir, result, time.Now().UTC()); err != nil {
				display.ErrorMsg("write fetch summary: %v", err)
			}
			results = append(results, result)
		}

		if len(results) == 0 && failed > 0 {
			return fmt.Errorf("fetch failed for all %d account(s)", failed)
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		for _, r := range results {
			display.SuccessMsg("%s: %d emails, %d attachments saved (%d junk skipped, %d failed)",
				r.Account, r.Fetched, r.Attachments, r.JunkSkipped, r.Failed)
		}
		return nil
	},
}

// resolveSince picks the date window lower bound: an explicit --since date,
// the stored last-sync watermark, or a 7-day default for first runs.
func resolveSince(flag string, lastSync time.Time) (time.Time, error) {
	if flag != "" {
		t, err := time.Parse("2006-01-02", flag)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --since %q, expected YYYY-MM-DD", flag)
		}
		return t, nil
	}
	if !lastSync.IsZero() {
		return lastSync, nil
	}
	return time.Now().UTC().AddDate(0, 0, -7), nil
}

func init() {
	fetchCmd.Flags().StringVar(&fetchSince, "since", "", "Fetch messages after this date (YYYY-MM-DD)")
	fetchCmd.Flags().Int64Var(&fetchMax, "max", 0, "Maximum messages per account (default from config)")
	rootCmd.AddCommand(fetchCmd)
}
