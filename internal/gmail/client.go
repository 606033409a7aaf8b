// Package gmail is a thin typed wrapper around google.golang.org/api/gmail/v1.
//
// Every method is a single API call (list handles pagination); callers own
// batching, error policy and persistence.
package gmail

import (
	"encoding/base64"
	"fmt"
	"strings"

	gm "google.golang.org/api/gmail/v1"

	"github.com/hendrikb/gmailops/internal/account"
)

const user = "me"

// Client wraps an authenticated Gmail service for one account.
type Client struct {
	svc *gm.Service
}

// NewClient wraps an authenticated service.
func NewClient(svc *gm.Service) *Client {
	return &Client{svc: svc}
}

// Profile resolves the identity behind the token.
func (c *Client) Profile() (*account.Identity, error) {
	p, err := c.svc.Users.GetProfile(user).Do()
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &account.Identity{
		Email:         p.EmailAddress,
		MessagesTotal: p.MessagesTotal,
		ThreadsTotal:  p.ThreadsTotal,
	}, nil
}

// ListMessages returns up to max message references matching a Gmail query,
// following pagination. The references carry only Id and ThreadId.
func (c *Client) ListMessages(query string, max int64) ([]*gm.Message, error) {
	var refs []*gm.Message
	pageToken := ""
	for {
		call := c.svc.Users.Messages.List(user).Q(query)
		if max > 0 {
			remaining := max - int64(len(refs))
			if remaining <= 0 {
				break
			}
			call = call.MaxResults(remaining)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
		refs = append(refs, resp.Messages...)
		pageToken = resp.NextPageToken
		if pageToken == "" || (max > 0 && int64(len(refs)) >= max) {
			break
		}
	}
	if max > 0 && int64(len(refs)) > max {
		refs = refs[:max]
	}
	return refs, nil
}

// GetMessage retrieves a message in the given format ("full", "metadata"
// or "raw").
func (c *Client) GetMessage(id, format string) (*gm.Message, error) {
	msg, err := c.svc.Users.Messages.Get(user, id).Format(format).Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	return msg, nil
}

// GetRaw retrieves the full RFC 2822 byte stream of a message.
func (c *Client) GetRaw(id string) ([]byte, error) {
	msg, err := c.GetMessage(id, "raw")
	if err != nil {
		return nil, err
	}
	raw, err := DecodeBase64URL(msg.Raw)
	if err != nil {
		return nil, fmt.Errorf("decode raw message %s: %w", id, err)
	}
	return raw, nil
}

// SendRaw submits an RFC 2822 message to the send endpoint.
func (c *Client) SendRaw(raw []byte) (*gm.Message, error) {
	msg := &gm.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	sent, err := c.svc.Users.Messages.Send(user, msg).Do()
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return sent, nil
}

// Trash moves a message to the trash.
func (c *Client) Trash(id string) error {
	if _, err := c.svc.Users.Messages.Trash(user, id).Do(); err != nil {
		return fmt.Errorf("trash message %s: %w", id, err)
	}
	return nil
}

// GetAttachment downloads and decodes one attachment body.
func (c *Client) GetAttachment(messageID, attachmentID string) ([]byte, error) {
	att, err := c.svc.Users.Messages.Attachments.Get(user, messageID, attachmentID).Do()
	if err != nil {
		return nil, fmt.Errorf("get attachment %s: %w", attachmentID, err)
	}
	data, err := DecodeBase64URL(att.Data)
	if err != nil {
		return nil, fmt.Errorf("decode attachment %s: %w", attachmentID, err)
	}
	return data, nil
}

// CreateDraft creates a draft from an RFC 2822 message.
func (c *Client) CreateDraft(raw []byte) (*gm.Draft, error) {
	draft := &gm.Draft{Message: &gm.Message{Raw: base64.URLEncoding.EncodeToString(raw)}}
	created, err := c.svc.Users.Drafts.Create(user, draft).Do()
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	return created, nil
}

// ListDrafts returns up to max draft references.
func (c *Client) ListDrafts(max int64) ([]*gm.Draft, error) {
	call := c.svc.Users.Drafts.List(user)
	if max > 0 {
		call = call.MaxResults(max)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return resp.Drafts, nil
}

// UpdateDraft replaces the message of an existing draft.
func (c *Client) UpdateDraft(id string, raw []byte) (*gm.Draft, error) {
	draft := &gm.Draft{Message: &gm.Message{Raw: base64.URLEncoding.EncodeToString(raw)}}
	updated, err := c.svc.Users.Drafts.Update(user, id, draft).Do()
	if err != nil {
		return nil, fmt.Errorf("update draft %s: %w", id, err)
	}
	return updated, nil
}

// DeleteDraft permanently deletes a draft.
func (c *Client) DeleteDraft(id string) error {
	if err := c.svc.Users.Drafts.Delete(user, id).Do(); err != nil {
		return fmt.Errorf("delete draft %s: %w", id, err)
	}
	return nil
}

// DecodeBase64URL decodes Gmail's base64url-encoded content, with or
// without padding.
func DecodeBase64URL(data string) ([]byte, error) {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return decoded, nil
	}
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
}
