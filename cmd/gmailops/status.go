package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hendrikb/gmailops/internal/display"
	"github.com/hendrikb/gmailops/internal/state"
)

type statusRow struct {
	Account string `json:"account"`
	state.AccountState
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"st"},
	Short:   "Show per-account sync state and counters",
	Example: `  gmailops status
  gmailops status --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := state.Load(cfg.StatePath)
		if err != nil {
			return err
		}

		rows := make([]statusRow, 0, len(store.Accounts))
		for email, st := range store.Accounts {
			rows = append(rows, statusRow{Account: email, AccountState: *st})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Account < rows[j].Account })

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No sync state yet — run 'gmailops fetch' first.")
			return nil
		}

		display.Header("Sync state")
		for _, row := range rows {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s  %s\n",
				display.Bold.Render(row.Account),
				display.Muted.Render("["+display.AccountLabel(row.Account)+"]"),
				display.Dim.Render("last sync "+display.TimeAgo(row.LastSync)))
			fmt.Fprintf(cmd.OutOrStdout(), "    fetched %d · attachments %d · sent %d · drafts %d\n",
				row.Fetched, row.Attachments, row.Sent, row.Drafts)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
