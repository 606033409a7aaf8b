// Package compose builds RFC 2822 messages for the send and draft
// endpoints: plain-text body plus optional base64-encoded file attachments.
package compose

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// Message is one outgoing email before encoding.
type Message struct {
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        string
	Attachments []string // file paths
}

// Validate checks the fields a send requires. Drafts share the same rules
// except that recipients may still be empty.
func (m *Message) Validate(requireRecipient bool) error {
	if requireRecipient && len(m.To) == 0 {
		return fmt.Errorf("at least one --to recipient is required")
	}
	if m.Subject == "" {
		return fmt.Errorf("--subject is required")
	}
	for _, path := range m.Attachments {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("attachment %s: %w", path, err)
		}
	}
	return nil
}

// Build serializes the message as RFC 2822 bytes. With attachments the
// result is multipart/mixed; without, a bare text/plain message.
func (m *Message) Build() ([]byte, error) {
	var b bytes.Buffer

	if m.From != "" {
		fmt.Fprintf(&b, "From: %s\r\n", m.From)
	}
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.To, ", "))
	if len(m.Cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(m.Cc, ", "))
	}
	if len(m.Bcc) > 0 {
		// Gmail strips the Bcc header from the delivered copies.
		fmt.Fprintf(&b, "Bcc: %s\r\n", strings.Join(m.Bcc, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if len(m.Attachments) == 0 {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
		b.WriteString("\r\n")
		b.WriteString(m.Body)
		return b.Bytes(), nil
	}

	mw := multipart.NewWriter(&b)
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", `text/plain; charset="UTF-8"`)
	part, err := mw.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(m.Body)); err != nil {
		return nil, err
	}

	for _, path := range m.Attachments {
		if err := writeAttachment(mw, path); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func writeAttachment(mw *multipart.Writer, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read attachment %s: %w", path, err)
	}

	name := filepath.Base(path)
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Type", fmt.Sprintf("%s; name=%q", contentType, name))
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	header.Set("Content-Transfer-Encoding", "base64")

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(content)
	// Fold the base64 stream at 76 characters per RFC 2045.
	for len(encoded) > 0 {
		n := min(76, len(encoded))
		if _, err := fmt.Fprintf(part, "%s\r\n", encoded[:n]); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
