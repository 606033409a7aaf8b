package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hendrikb/gmailops/internal/account"
	"github.com/hendrikb/gmailops/internal/compose"
	"github.com/hendrikb/gmailops/internal/display"
	"github.com/hendrikb/gmailops/internal/state"
)

var (
	sendTo      []string
	sendCc      []string
	sendBcc     []string
	sendSubject string
	sendBody    string
	sendAttach  []string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an email, optionally with attachments",
	Example: `  gmailops send --account me@example.com --to a@b.de --subject "Hi" --body "Hello"
  gmailops send --to a@b.de --subject "Report" --attach report.pdf --attach data.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		msg := buildMessageFromFlags()
		if err := msg.Validate(true); err != nil {
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
		identity, err := client.Profile()
		if err != nil {
			return fmt.Errorf("%s: profile lookup: %w", acct.Name, err)
		}

		raw, err := msg.Build()
		if err != nil {
			return err
		}

		sent, err := client.SendRaw(raw)
		if err != nil {
			return err
		}

		bumpCounter(identity.Email, func(st *state.AccountState) { st.Sent++ })
		display.SuccessMsg("sent %s to %v (id %s)", display.Truncate(msg.Subject, 60), msg.To, sent.Id)
		return nil
	},
}

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Create a draft (same flags as send, recipients optional)",
	Example: `  gmailops draft --subject "WIP" --body "..."
  gmailops draft --to a@b.de --subject "Later" --attach notes.pdf`,
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
		identity, err := client.Profile()
		if err != nil {
			return fmt.Errorf("%s: profile lookup: %w", acct.Name, err)
		}

		raw, err := msg.Build()
		if err != nil {
			return err
		}

		draft, err := client.CreateDraft(raw)
		if err != nil {
			return err
		}

		bumpCounter(identity.Email, func(st *state.AccountState) { st.Drafts++ })
		display.SuccessMsg("draft %s created (id %s)", display.Truncate(msg.Subject, 60), draft.Id)
		return nil
	},
}

func buildMessageFromFlags() *compose.Message {
	return &compose.Message{
		To:          sendTo,
		Cc:          sendCc,
		Bcc:         sendBcc,
		Subject:     sendSubject,
		Body:        sendBody,
		Attachments: sendAttach,
	}
}

// singleAccount requires an explicit --account when more than one is
// configured; send and draft never fan out.
func singleAccount() (account.Account, error) {
	accounts, err := resolveAccounts()
	if err != nil {
		return account.Account{}, err
	}
	if len(accounts) > 1 {
		return account.Account{}, fmt.Errorf("multiple accounts configured — pick one with --account")
	}
	return accounts[0], nil
}

// bumpCounter updates one sync-state counter, best-effort. State is keyed
// by the mailbox's profile address, never the account directory name, so
// send, draft and fetch share one record per mailbox.
func bumpCounter(email string, update func(*state.AccountState)) {
	store, err := state.Load(cfg.StatePath)
	if err != nil {
		logger.Warn("load sync state failed", "error", err)
		return
	}
	st := store.Account(email)
	update(st)
	st.LastSync = time.Now().UTC()
	if err := store.Save(); err != nil {
		logger.Warn("save sync state failed", "error", err)
	}
}

func registerComposeFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&sendTo, "to", nil, "Recipient (repeatable)")
	cmd.Flags().StringSliceVar(&sendCc, "cc", nil, "Cc recipient (repeatable)")
	cmd.Flags().StringSliceVar(&sendBcc, "bcc", nil, "Bcc recipient (repeatable)")
	cmd.Flags().StringVar(&sendSubject, "subject", "", "Subject line")
	cmd.Flags().StringVar(&sendBody, "body", "", "Plain-text body")
	cmd.Flags().StringSliceVar(&sendAttach, "attach", nil, "Attachment file path (repeatable)")
}

func init() {
	registerComposeFlags(sendCmd)
	registerComposeFlags(draftCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(draftCmd)
}
