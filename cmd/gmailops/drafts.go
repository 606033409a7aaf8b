package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hendrikb/gmailops/internal/display"
	"github.com/hendrikb/gmailops/internal/gmail"
)

var draftsMax int64

type draftSummary struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	To      string `json:"to,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Size    int64  `json:"size_estimate,omitempty"`
}

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "List drafts",
	Example: `  gmailops drafts --account me@example.com
  gmailops drafts --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		acct, err := singleAccount()
		if err != nil {
			return err
		}
		client, err := clientFor(ctx, acct)
		if err != nil {
			return err
		}

		drafts, err := client.ListDrafts(maxOrDefault(draftsMax))
		if err != nil {
			return err
		}

		summaries := make([]draftSummary, 0, len(drafts))
		for _, d := range drafts {
			s := draftSummary{ID: d.Id}
			if d.Message != nil {
				s.Snippet = d.Message.Snippet
				s.Size = d.Message.SizeEstimate
				if d.Message.Payload != nil {
					headers := gmail.HeaderMap(d.Message.Payload.Headers)
					s.Subject = headers["Subject"]
					s.To = headers["To"]
				}
			}
			summaries = append(summaries, s)
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summaries)
		}

		if len(summaries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No drafts.")
			return nil
		}
		for _, s := range summaries {
			subject := s.Subject
			if subject == "" {
				subject = "(no subject)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
				display.Dim.Render(s.ID),
				display.Truncate(subject, 70),
				display.Muted.Render(display.HumanSize(s.Size)))
		}
		return nil
	},
}

var deleteDraftCmd = &cobra.Command{
	Use:     "delete-draft DRAFT_ID",
	Short:   "Permanently delete a draft",
	Example: `  gmailops delete-draft r-1234567890`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		acct, err := singleAccount()
		if err != nil {
			return err
		}
		client, err := clientFor(ctx, acct)
		if err != nil {
			return err
		}

		if err := client.DeleteDraft(args[0]); err != nil {
			return err
		}
		display.SuccessMsg("draft %s deleted", args[0])
		return nil
	},
}

func init() {
	draftsCmd.Flags().Int64Var(&draftsMax, "max", 0, "Maximum drafts to list (default from config)")
	rootCmd.AddCommand(draftsCmd)
	rootCmd.AddCommand(deleteDraftCmd)
}
