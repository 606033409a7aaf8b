package gmail

import (
	"strings"
	"time"

	gm "google.golang.org/api/gmail/v1"
)

// AttachmentDescriptor identifies one attachment of a message. Embedded
// images without a server-side attachment id get a synthetic
// "inline:<content-id>" id and carry their payload inline.
type AttachmentDescriptor struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	// InlineData is the base64url payload of an embedded part. It is kept
	// out of metadata.json; only the extracted file is persisted.
	InlineData string `json:"-"`
}

// Inline reports whether the descriptor carries its payload inline
// instead of referencing a downloadable attachment.
func (a AttachmentDescriptor) Inline() bool {
	return strings.HasPrefix(a.ID, "inline:")
}

// EmailRecord is the parsed form of one Gmail message payload. It is
// transient: produced for one save/forward decision, then discarded.
type EmailRecord struct {
	ID          string                 `json:"id"`
	ThreadID    string                 `json:"thread_id"`
	Subject     string                 `json:"subject"`
	From        string                 `json:"from"`
	To          string                 `json:"to,omitempty"`
	Date        string                 `json:"date"`
	Internal    time.Time              `json:"-"`
	Snippet     string                 `json:"snippet,omitempty"`
	Labels      []string               `json:"labels,omitempty"`
	Body        string                 `json:"body,omitempty"`
	Attachments []AttachmentDescriptor `json:"attachments,omitempty"`
}

// ParseMessage turns a full-format API message into an EmailRecord.
func ParseMessage(msg *gm.Message) *EmailRecord {
	rec := &EmailRecord{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
		Labels:   msg.LabelIds,
		Internal: time.UnixMilli(msg.InternalDate).UTC(),
	}
	if msg.Payload == nil {
		return rec
	}

	headers := HeaderMap(msg.Payload.Headers)
	rec.Subject = defaultStr(headers["Subject"], "(no subject)")
	rec.From = headers["From"]
	rec.To = headers["To"]
	rec.Date = headers["Date"]
	rec.Body = ExtractBody(msg.Payload)
	rec.Attachments = ExtractAttachments(msg.Payload)
	return rec
}

// ExtractBody gets the plain text body from a message payload.
// Handles multipart messages recursively, preferring text/plain over text/html.
func ExtractBody(payload *gm.MessagePart) string {
	if payload.Body != nil && payload.Body.Data != "" && strings.HasPrefix(payload.MimeType, "text/") {
		if decoded, err := DecodeBase64URL(payload.Body.Data); err == nil {
			return string(decoded)
		}
	}

	// First pass: prefer text/plain, recursing into nested multiparts.
	for _, part := range payload.Parts {
		if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
			if decoded, err := DecodeBase64URL(part.Body.Data); err == nil {
				return string(decoded)
			}
		}
		if len(part.Parts) > 0 {
			if body := ExtractBody(part); body != "" {
				return body
			}
		}
	}

	// Second pass: fall back to HTML.
	for _, part := range payload.Parts {
		if part.MimeType == "text/html" && part.Body != nil && part.Body.Data != "" {
			if decoded, err := DecodeBase64URL(part.Body.Data); err == nil {
				return string(decoded)
			}
		}
	}

	return ""
}

// ExtractAttachments collects attachment descriptors from the part tree.
// Parts with a filename but no attachment id (embedded images delivered
// inline) get a synthetic "inline:<content-id>" id.
func ExtractAttachments(payload *gm.MessagePart) []AttachmentDescriptor {
	var attachments []AttachmentDescriptor

	WalkParts(payload, func(part *gm.MessagePart) {
		if part.Filename == "" || part.Body == nil {
			return
		}
		desc := AttachmentDescriptor{
			Filename: part.Filename,
			MimeType: part.MimeType,
			Size:     part.Body.Size,
		}
		switch {
		case part.Body.AttachmentId != "":
			desc.ID = part.Body.AttachmentId
		default:
			cid := strings.Trim(HeaderMap(part.Headers)["Content-ID"], "<>")
			if cid == "" {
				cid = part.PartId
			}
			desc.ID = "inline:" + cid
			desc.InlineData = part.Body.Data
		}
		attachments = append(attachments, desc)
	})

	return attachments
}

// WalkParts visits every part of a message depth-first, root included.
// Parts may nest arbitrarily.
func WalkParts(part *gm.MessagePart, fn func(*gm.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, sub := range part.Parts {
		WalkParts(sub, fn)
	}
}

// HeaderMap converts Gmail API headers into a simple key-value map.
func HeaderMap(headers []*gm.MessagePartHeader) map[string]string {
	m := make(map[string]string, len(headers))
	for _, h := range headers {
		m[h.Name] = h.Value
	}
	return m
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
