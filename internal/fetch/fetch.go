// Package fetch downloads emails with their attachments into a folder tree.
//
// Each fetched email becomes one directory under
// <output>/<account>/<year>/<month>/<date-slug-id>/ containing body.txt,
// metadata.json and the kept attachments. Decorative attachments are
// dropped by the junk filter before anything touches disk.
package fetch

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	gm "google.golang.org/api/gmail/v1"

	"github.com/hendrikb/gmailops/internal/gmail"
)

// Mailbox is the slice of the Gmail client the fetcher needs.
type Mailbox interface {
	ListMessages(query string, max int64) ([]*gm.Message, error)
	GetMessage(id, format string) (*gm.Message, error)
	GetAttachment(messageID, attachmentID string) ([]byte, error)
}

// Options configure one fetch run.
type Options struct {
	Account   string
	OutputDir string
	Since     time.Time
	Max       int64
}

// Result summarizes one fetch run; it is also written as the
// fetch-summary JSON.
type Result struct {
	RunID       string    `json:"run_id"`
	Account     string    `json:"account"`
	Query       string    `json:"query"`
	StartedAt   time.Time `json:"started_at"`
	Fetched     int       `json:"fetched"`
	Attachments int       `json:"attachments"`
	JunkSkipped int       `json:"junk_skipped"`
	Failed      int       `json:"failed"`
}

// Runner drives one fetch pass over an account.
type Runner struct {
	Box Mailbox
	Log *slog.Logger
}

// Run lists messages in the date window and writes one folder per email.
// Per-message and per-attachment failures are logged and counted; the run
// continues.
func (r *Runner) Run(opts Options) (*Result, error) {
	query := fmt.Sprintf("after:%s", opts.Since.Format("2006/01/02"))
	result := &Result{
		RunID:     uuid.NewString(),
		Account:   opts.Account,
		Query:     query,
		StartedAt: time.Now().UTC(),
	}

	refs, err := r.Box.ListMessages(query, opts.Max)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	r.Log.Info("fetching messages", "account", opts.Account, "query", query, "count", len(refs))

	for _, ref := range refs {
		msg, err := r.Box.GetMessage(ref.Id, "full")
		if err != nil {
			result.Failed++
			r.Log.Error("fetch message failed", "id", ref.Id, "error", err)
			continue
		}

		rec := gmail.ParseMessage(msg)
		dir := EmailDir(opts.OutputDir, opts.Account, rec)
		if err := r.saveEmail(dir, rec, result); err != nil {
			result.Failed++
			r.Log.Error("save email failed", "id", rec.ID, "error", err)
			continue
		}
		result.Fetched++
	}

	return result, nil
}

// saveEmail writes one email folder: body, metadata and kept attachments.
func (r *Runner) saveEmail(dir string, rec *gmail.EmailRecord, result *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create email directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "body.txt"), []byte(rec.Body), 0o644); err != nil {
		return fmt.Errorf("write body: %w", err)
	}

	meta, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), meta, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	for _, att := range rec.Attachments {
		if IsJunkAttachment(att.Filename, att.Size) {
			result.JunkSkipped++
			r.Log.Debug("skipped junk attachment", "id", rec.ID, "filename", att.Filename, "size", att.Size)
			continue
		}

		data, err := r.attachmentData(rec.ID, att)
		if err != nil {
			result.Failed++
			r.Log.Error("download attachment failed", "id", rec.ID, "filename", att.Filename, "error", err)
			continue
		}

		if _, err := SaveAttachment(dir, att.Filename, data); err != nil {
			result.Failed++
			r.Log.Error("save attachment failed", "id", rec.ID, "filename", att.Filename, "error", err)
			continue
		}
		result.Attachments++
	}

	return nil
}

func (r *Runner) attachmentData(messageID string, att gmail.AttachmentDescriptor) ([]byte, error) {
	if att.Inline() {
		return gmail.DecodeBase64URL(att.InlineData)
	}
	return r.Box.GetAttachment(messageID, att.ID)
}

// EmailDir builds the folder path for one email:
// <output>/<account>/<year>/<month>/<date-slug-id>/.
func EmailDir(output, account string, rec *gmail.EmailRecord) string {
	t := rec.Internal
	if t.IsZero() {
		t = time.Now().UTC()
	}
	leaf := fmt.Sprintf("%s-%s-%s", t.Format("2006-01-02"), Slug(rec.Subject), rec.ID)
	return filepath.Join(output, account, t.Format("2006"), t.Format("01"), leaf)
}

// Slug turns a subject into a short filesystem-safe fragment.
func Slug(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
		if b.Len() >= 40 {
			break
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "no-subject"
	}
	return slug
}

// SaveAttachment writes attachment content under dir with collision-safe
// renaming: name.ext, name(1).ext, name(2).ext...
func SaveAttachment(dir, filename string, data []byte) (string, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		name = "attachment"
	}
	path := uniquePath(filepath.Join(dir, name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return path, nil
}

// SanitizeFilename strips path separators so an attachment name can never
// escape its email folder.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")
	return strings.TrimSpace(filename)
}

// uniquePath returns path, or the first path(N).ext not yet taken.
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s(%d)%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// WriteSummary flushes the run result to a timestamped JSON file in dir.
func WriteSummary(dir string, result *Result, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create summary directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("fetch-summary-%s.json", now.Format("20060102-150405")))
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write fetch summary: %w", err)
	}
	return path, nil
}
