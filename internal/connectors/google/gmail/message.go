package gmail

import (
	"encoding/base64"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// MessageToMailMessage converts a full-format Gmail message.
// Only parts that carry a file name are kept. A top-level part without a
// name contributes its first named subpart.
func MessageToMailMessage(msg *gmail.Message) domain.MailMessage {
	out := domain.MailMessage{ID: msg.Id, Subject: "No Subject", Date: "No Date"}
	if msg.Payload == nil {
		return out
	}

	if v, ok := header(msg.Payload.Headers, "Subject"); ok {
		out.Subject = v
	}
	if v, ok := header(msg.Payload.Headers, "Received", "Date"); ok {
		out.Date = v
	}

	for _, part := range msg.Payload.Parts {
		if part.Filename == "" {
			part = firstNamedSubpart(part)
		}
		if part == nil || part.Filename == "" {
			continue
		}
		out.Parts = append(out.Parts, toMailPart(part))
	}
	return out
}

// header returns the value of the first header whose name is one of names.
func header(headers []*gmail.MessagePartHeader, names ...string) (string, bool) {
	for _, h := range headers {
		for _, n := range names {
			if strings.EqualFold(h.Name, n) {
				return h.Value, true
			}
		}
	}
	return "", false
}

func firstNamedSubpart(part *gmail.MessagePart) *gmail.MessagePart {
	for _, sub := range part.Parts {
		if sub.Filename != "" {
			return sub
		}
	}
	return nil
}

func toMailPart(part *gmail.MessagePart) domain.MailPart {
	mp := domain.MailPart{Filename: part.Filename, MimeType: part.MimeType}
	if part.Body == nil {
		return mp
	}
	if part.Body.Data != "" {
		if data, err := decodeBase64URL(part.Body.Data); err == nil {
			mp.Data = data
		}
	}
	if mp.Data == nil {
		mp.AttachmentID = part.Body.AttachmentId
	}
	return mp
}

// decodeBase64URL accepts padded and unpadded URL-safe base64.
func decodeBase64URL(s string) ([]byte, error) {
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}
