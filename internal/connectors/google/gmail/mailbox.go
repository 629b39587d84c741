// Package gmail implements the mailbox port over the Gmail API.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/tabula/internal/connectors/google"
	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure Mailbox implements the interface.
var _ driven.Mailbox = (*Mailbox)(nil)

const me = "me"

// Mailbox reads and sends mail as the authenticated user.
type Mailbox struct {
	svc         *gmail.Service
	rateLimiter *google.RateLimiter
}

// New creates a mailbox over an authenticated Gmail service.
func New(svc *gmail.Service) *Mailbox {
	return &Mailbox{
		svc:         svc,
		rateLimiter: google.NewRateLimiter(google.ServiceGmail),
	}
}

// SearchMessageIDs lists every message matching query, following page tokens.
func (m *Mailbox) SearchMessageIDs(ctx context.Context, query string) ([]string, error) {
	var ids []string
	var pageToken string
	for {
		if err := m.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		req := m.svc.Users.Messages.List(me).Q(query)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}
		resp, err := req.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("list messages: %w", google.WrapError(m.rateLimiter.Observe(err)))
		}
		for _, msg := range resp.Messages {
			ids = append(ids, msg.Id)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	logger.Debug("gmail: %d messages match %q", len(ids), query)
	return ids, nil
}

// GetMessage fetches a message in full format.
func (m *Mailbox) GetMessage(ctx context.Context, id string) (domain.MailMessage, error) {
	if err := m.rateLimiter.Wait(ctx); err != nil {
		return domain.MailMessage{}, err
	}
	msg, err := m.svc.Users.Messages.Get(me, id).Format("full").Context(ctx).Do()
	if err != nil {
		return domain.MailMessage{}, fmt.Errorf("get message %s: %w", id, google.WrapError(m.rateLimiter.Observe(err)))
	}
	return MessageToMailMessage(msg), nil
}

// GetAttachment fetches and decodes attachment content.
func (m *Mailbox) GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	if err := m.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	body, err := m.svc.Users.Messages.Attachments.Get(me, messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", google.WrapError(m.rateLimiter.Observe(err)))
	}
	data, err := decodeBase64URL(body.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: attachment data: %v", domain.ErrParse, err)
	}
	return data, nil
}

// SendRaw submits an RFC 822 message.
func (m *Mailbox) SendRaw(ctx context.Context, raw []byte) (string, error) {
	if err := m.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	sent, err := m.svc.Users.Messages.Send(me, msg).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("send message: %w", google.WrapError(m.rateLimiter.Observe(err)))
	}
	return sent.Id, nil
}
