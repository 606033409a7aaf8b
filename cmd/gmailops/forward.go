package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hendrikb/gmailops/internal/display"
	"github.com/hendrikb/gmailops/internal/forward"
)

var (
	forwardSince   string
	forwardMax     int64
	forwardTo      string
	forwardExecute bool
)

var forwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "Forward invoice-like emails to a processing inbox",
	Long: `Search for invoice candidates (billing keywords + attachment + date
window), keep those with a PDF attachment, and forward each as a verbatim
message/rfc822 wrapper.

Dry-run by default: without --execute nothing is sent, but the run still
logs everything that would have been forwarded. Re-running over an
overlapping window re-forwards already-forwarded messages: forwarded ids
are not tracked.`,
	Example: `  gmailops forward --since 2026-08-01
  gmailops forward --since 2026-08-01 --execute
  gmailops forward --account billing@example.com --since 2026-08-01 --to invoices@datev.example --execute`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := forwardTo
		if target == "" {
			target = cfg.ForwardTo
		}
		if target == "" {
			return fmt.Errorf("no forwarding address — set forward_to in %s or pass --to", configPath)
		}
		since, err := resolveSince(forwardSince, time.Time{})
		if err != nil {
			return err
		}

		ctx := context.Background()
		accounts, err := resolveAccounts()
		if err != nil {
			return err
		}

		var summaries []*forward.Summary
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

			runner := &forward.Runner{
				Box:     client,
				Account: acct.Name,
				Target:  target,
				Execute: forwardExecute,
				Log:     logger.With("account", acct.Name),
			}
			summary, err := runner.Run(since, maxOrDefault(forwardMax))
			if err != nil {
				display.ErrorMsg("%s — forward run failed: %v", acct.Name, err)
				failed++
				continue
			}

			if _, err := forward.WriteAuditLog(cfg.LogDir, summary, time.Now().UTC()); err != nil {
				display.ErrorMsg("write audit log: %v", err)
			}
			summaries = append(summaries, summary)
		}

		if len(summaries) == 0 && failed > 0 {
			return fmt.Errorf("forward failed for all %d account(s)", failed)
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summaries)
		}

		for _, s := range summaries {
			forwardVerb, skipVerb := "Forwarded", "Skipped"
			if s.DryRun {
				forwardVerb, skipVerb = "Would forward", "Would skip"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: Total matched: %d, %s: %d, %s: %d\n",
				s.Account, s.Processed, forwardVerb, s.Forwarded, skipVerb, s.Skipped)
			for _, e := range s.Entries {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s  %s\n",
					display.DispositionBadge("forward"),
					display.Truncate(e.Subject, 50),
					display.Dim.Render(e.From))
			}
			if s.Failed > 0 {
				display.ErrorMsg("%s: %d message(s) failed", s.Account, s.Failed)
			}
		}
		return nil
	},
}

func init() {
	forwardCmd.Flags().StringVar(&forwardSince, "since", "", "Consider messages after this date (YYYY-MM-DD)")
	forwardCmd.Flags().Int64Var(&forwardMax, "max", 0, "Maximum candidates per account (default from config)")
	forwardCmd.Flags().StringVar(&forwardTo, "to", "", "Forwarding address (overrides config forward_to)")
	forwardCmd.Flags().BoolVar(&forwardExecute, "execute", false, "Actually send; default is dry run")
	rootCmd.AddCommand(forwardCmd)
}
