package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hendrikb/gmailops/internal/display"
)

var trashCmd = &cobra.Command{
	Use:     "trash MESSAGE_ID",
	Short:   "Move a message to the trash",
	Example: `  gmailops trash 18d5a7b3c4e5f6a7 --account me@example.com`,
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

		if err := client.Trash(args[0]); err != nil {
			return err
		}
		display.SuccessMsg("message %s moved to trash", args[0])
		return nil
	},
}

var updateDraftCmd = &cobra.Command{
	Use:     "update-draft DRAFT_ID",
	Short:   "Replace a draft's message (same flags as send)",
	Example: `  gmailops update-draft r-1234567890 --to a@b.de --subject "Final" --body "..."`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg := buildMessageFromFlags()
		if err := msg.Validate(false); err != nil {
			return err
		}

		ctx := context.Background()
		acct, err := singleAccount()
		if err != nil {
			return err
		}
		client, err := clientFor(ctx, acct)
		if err != nil {
			return err
		}

		raw, err := msg.Build()
		if err != nil {
			return err
		}
		draft, err := client.UpdateDraft(args[0], raw)
		if err != nil {
			return err
		}
		display.SuccessMsg("draft %s updated", draft.Id)
		return nil
	},
}

func init() {
	registerComposeFlags(updateDraftCmd)
	rootCmd.AddCommand(trashCmd)
	rootCmd.AddCommand(updateDraftCmd)
}
