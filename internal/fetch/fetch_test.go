package fetch

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gm "google.golang.org/api/gmail/v1"

	"github.com/hendrikb/gmailops/internal/gmail"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"Rechnung #1", "rechnung-1"},
		{"  Invoice   reminder!  ", "invoice-reminder"},
		{"", "no-subject"},
		{"///", "no-subject"},
		{"Ärger mit Umlauten", "rger-mit-umlauten"},
	}
	for _, tt := range tests {
		if got := Slug(tt.subject); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.subject, got, tt.want)
		}
	}
}

func TestSlugCapsLength(t *testing.T) {
	long := Slug("this subject just keeps going and going and going and going")
	if len(long) > 41 {
		t.Errorf("Slug too long: %d chars (%q)", len(long), long)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"document.pdf", "document.pdf"},
		{"path/to/document.pdf", "path_to_document.pdf"},
		{"..\\..\\evil.exe", "____evil.exe"},
		{"  spaced.txt ", "spaced.txt"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.filename); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestSaveAttachmentCollisions(t *testing.T) {
	dir := t.TempDir()

	p1, err := SaveAttachment(dir, "report.pdf", []byte("one"))
	require.NoError(t, err)
	p2, err := SaveAttachment(dir, "report.pdf", []byte("two"))
	require.NoError(t, err)
	p3, err := SaveAttachment(dir, "report.pdf", []byte("three"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "report.pdf"), p1)
	assert.Equal(t, filepath.Join(dir, "report(1).pdf"), p2)
	assert.Equal(t, filepath.Join(dir, "report(2).pdf"), p3)

	data, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestEmailDir(t *testing.T) {
	rec := &gmail.EmailRecord{
		ID:       "abc123",
		Subject:  "Rechnung #1",
		Internal: time.Date(2026, 8, 17, 10, 0, 0, 0, time.UTC),
	}
	dir := EmailDir("mail", "billing@example.com", rec)
	assert.Equal(t, filepath.Join("mail", "billing@example.com", "2026", "08", "2026-08-17-rechnung-1-abc123"), dir)
}

// fakeMailbox serves one account's messages from memory.
type fakeMailbox struct {
	messages    map[string]*gm.Message
	attachments map[string][]byte
}

func (f *fakeMailbox) ListMessages(query string, max int64) ([]*gm.Message, error) {
	var refs []*gm.Message
	for id := range f.messages {
		refs = append(refs, &gm.Message{Id: id})
	}
	return refs, nil
}

func (f *fakeMailbox) GetMessage(id, format string) (*gm.Message, error) {
	msg, ok := f.messages[id]
	if !ok {
		return nil, fmt.Errorf("not found: %s", id)
	}
	return msg, nil
}

func (f *fakeMailbox) GetAttachment(messageID, attachmentID string) ([]byte, error) {
	data, ok := f.attachments[attachmentID]
	if !ok {
		return nil, fmt.Errorf("not found: %s", attachmentID)
	}
	return data, nil
}

func TestRunnerWritesEmailFolders(t *testing.T) {
	body := base64.URLEncoding.EncodeToString([]byte("Sehr geehrte Damen und Herren,\nanbei die Rechnung.\n"))
	box := &fakeMailbox{
		messages: map[string]*gm.Message{
			"m1": {
				Id:           "m1",
				InternalDate: time.Date(2026, 8, 17, 10, 0, 0, 0, time.UTC).UnixMilli(),
				Payload: &gm.MessagePart{
					MimeType: "multipart/mixed",
					Headers: []*gm.MessagePartHeader{
						{Name: "Subject", Value: "Rechnung #1"},
						{Name: "From", Value: "billing@shop.example"},
						{Name: "Date", Value: "Mon, 17 Aug 2026 10:00:00 +0200"},
					},
					Parts: []*gm.MessagePart{
						{MimeType: "text/plain", Body: &gm.MessagePartBody{Data: body}},
						{Filename: "rechnung.pdf", MimeType: "application/pdf",
							Body: &gm.MessagePartBody{AttachmentId: "att-pdf", Size: 120 * 1024}},
						{Filename: "pixel.png", MimeType: "image/png",
							Body: &gm.MessagePartBody{AttachmentId: "att-pixel", Size: 120}},
					},
				},
			},
		},
		attachments: map[string][]byte{
			"att-pdf":   []byte("%PDF-1.7 fake"),
			"att-pixel": []byte("png"),
		},
	}

	output := t.TempDir()
	runner := &Runner{Box: box, Log: slog.New(slog.DiscardHandler)}
	result, err := runner.Run(Options{
		Account:   "billing@example.com",
		OutputDir: output,
		Since:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Max:       100,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Fetched)
	assert.Equal(t, 1, result.Attachments, "pdf kept")
	assert.Equal(t, 1, result.JunkSkipped, "tracking pixel dropped")
	assert.Equal(t, 0, result.Failed)

	dir := filepath.Join(output, "billing@example.com", "2026", "08", "2026-08-17-rechnung-1-m1")
	bodyText, err := os.ReadFile(filepath.Join(dir, "body.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(bodyText), "anbei die Rechnung")

	_, err = os.Stat(filepath.Join(dir, "metadata.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "rechnung.pdf"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "pixel.png"))
	assert.True(t, os.IsNotExist(err), "junk attachment must not be written")
}

func TestWriteSummary(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 8, 17, 12, 0, 0, 0, time.UTC)
	result := &Result{RunID: "r1", Account: "a@b.de", Fetched: 3}

	path, err := WriteSummary(dir, result, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fetch-summary-20260817-120000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fetched": 3`)
}
