// Package forward re-sends invoice candidates to a processing inbox.
//
// The original message is embedded verbatim as a message/rfc822 body under
// a fresh envelope, guaranteeing bit-for-bit preservation of the original
// headers and attachments. Runs are dry-run by default; nothing is sent
// unless Execute is set. Re-running over an overlapping date range
// re-forwards already-forwarded messages: there is no dedup store.
package forward

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	gm "google.golang.org/api/gmail/v1"

	"github.com/hendrikb/gmailops/internal/classify"
	"github.com/hendrikb/gmailops/internal/gmail"
)

// Mailbox is the slice of the Gmail client the forwarder needs.
type Mailbox interface {
	ListMessages(query string, max int64) ([]*gm.Message, error)
	GetMessage(id, format string) (*gm.Message, error)
	GetRaw(id string) ([]byte, error)
	SendRaw(raw []byte) (*gm.Message, error)
}

// LogEntry is one forwarded (or would-be-forwarded) message in the audit log.
type LogEntry struct {
	Date    string `json:"date"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	ID      string `json:"id"`
}

// Summary is the result of one forwarding run.
type Summary struct {
	RunID     string     `json:"run_id"`
	Account   string     `json:"account"`
	Query     string     `json:"query"`
	DryRun    bool       `json:"dry_run"`
	Processed int        `json:"processed"`
	Forwarded int        `json:"forwarded"`
	Skipped   int        `json:"skipped"`
	Failed    int        `json:"failed"`
	Entries   []LogEntry `json:"entries"`
}

// Runner drives one forwarding pass over an account.
type Runner struct {
	Box     Mailbox
	Account string
	// Target is the fixed processing-inbox address.
	Target string
	// Execute sends for real; otherwise the run is a dry run.
	Execute bool
	Log     *slog.Logger
}

// Run classifies candidates since the given date and forwards (or, in
// dry-run, records) each one. Per-message failures are logged and counted;
// the run continues.
func (r *Runner) Run(since time.Time, max int64) (*Summary, error) {
	query := classify.Query(since)
	summary := &Summary{
		RunID:   uuid.NewString(),
		Account: r.Account,
		Query:   query,
		DryRun:  !r.Execute,
	}

	refs, err := r.Box.ListMessages(query, max)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}

	for _, ref := range refs {
		summary.Processed++

		msg, err := r.Box.GetMessage(ref.Id, "full")
		if err != nil {
			summary.Failed++
			r.Log.Error("fetch candidate failed", "id", ref.Id, "error", err)
			continue
		}

		rec := gmail.ParseMessage(msg)
		switch classify.Classify(msg) {
		case classify.Forward:
			if err := r.forwardOne(rec); err != nil {
				summary.Failed++
				r.Log.Error("forward failed", "id", rec.ID, "subject", rec.Subject, "error", err)
				continue
			}
			summary.Forwarded++
			summary.Entries = append(summary.Entries, LogEntry{
				Date:    rec.Date,
				From:    rec.From,
				Subject: rec.Subject,
				ID:      rec.ID,
			})
		case classify.SkipNoPDF:
			summary.Skipped++
			r.Log.Info("skipped: no PDF attachment", "id", rec.ID, "subject", rec.Subject)
		}
	}

	return summary, nil
}

// forwardOne wraps the original raw message and, in execute mode, sends it.
func (r *Runner) forwardOne(rec *gmail.EmailRecord) error {
	if !r.Execute {
		r.Log.Info("would forward", "id", rec.ID, "subject", rec.Subject, "from", rec.From)
		return nil
	}

	raw, err := r.Box.GetRaw(rec.ID)
	if err != nil {
		return err
	}

	envelope := BuildEnvelope(r.Target, rec.Subject, raw)
	if _, err := r.Box.SendRaw(envelope); err != nil {
		return err
	}

	r.Log.Info("forwarded", "id", rec.ID, "subject", rec.Subject, "to", r.Target)
	return nil
}

// BuildEnvelope wraps raw RFC 2822 message bytes as the message/rfc822
// body of a new message. The original is embedded as-is, never re-parsed
// or re-serialized.
func BuildEnvelope(to, subject string, raw []byte) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: Fwd: %s\r\n", subject)
	b.WriteString("Content-Type: message/rfc822\r\n")
	b.WriteString("\r\n")
	b.Write(raw)
	return b.Bytes()
}

// WriteAuditLog flushes the run's entries to a timestamped JSON file in
// dir. Nothing is written when no message was forwarded.
func WriteAuditLog(dir string, summary *Summary, now time.Time) (string, error) {
	if len(summary.Entries) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("forward-log-%s.json", now.Format("20060102-150405")))
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write audit log: %w", err)
	}
	return path, nil
}
