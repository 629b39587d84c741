package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure MailService implements the interface.
var _ driving.MailService = (*MailService)(nil)

// base64LineLength is the maximum encoded line length of a MIME body.
const base64LineLength = 76

var receivedAt = regexp.MustCompile(`\d{1,2}\s\w{3}\s\d{4}\s\d{2}:\d{2}:\d{2}`)

// MailService fetches report attachments and sends tables by mail.
type MailService struct {
	mailbox  driven.Mailbox
	codec    driven.TabularCodec
	sender   string
	storeDir string
}

// NewMailService creates a mail service. Attachments are saved under
// storeDir unless a fetch names its own directory; sender fills the
// From header of outgoing mail.
func NewMailService(mailbox driven.Mailbox, codec driven.TabularCodec, sender, storeDir string) *MailService {
	return &MailService{mailbox: mailbox, codec: codec, sender: sender, storeDir: storeDir}
}

// FetchReport saves the file parts of the newest message matching the query,
// then loads the first tabular file found in the store directory.
func (s *MailService) FetchReport(ctx context.Context, req domain.FetchRequest) (*domain.Table, error) {
	query := req.Query
	if query == "" {
		query = domain.DefaultInboxQuery
	}
	dir := req.StoreDir
	if dir == "" {
		dir = s.storeDir
	}

	ids, err := s.mailbox.SearchMessageIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		logger.Status("No messages found for query: %s", query)
		return nil, fmt.Errorf("%w: no message matches %q", domain.ErrNotFound, query)
	}

	msg, err := s.mailbox.GetMessage(ctx, ids[0])
	if err != nil {
		return nil, err
	}
	when := receivedAt.FindString(msg.Date)
	if when == "" {
		when = "Unknown date"
	}
	logger.Status("Fetching attachment from message '%s' (ID: %s) received at %s", msg.Subject, msg.ID, when)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	for _, part := range msg.Parts {
		if err := s.savePart(ctx, msg.ID, part, dir); err != nil {
			return nil, err
		}
	}
	return s.loadFirstTabular(dir, req)
}

func (s *MailService) savePart(ctx context.Context, messageID string, part domain.MailPart, dir string) error {
	data := part.Data
	if data == nil && part.AttachmentID != "" {
		var err error
		data, err = s.mailbox.GetAttachment(ctx, messageID, part.AttachmentID)
		if err != nil {
			return fmt.Errorf("attachment %s: %w", part.Filename, err)
		}
	}
	if len(data) == 0 {
		logger.Status("No data found for filename: %s", part.Filename)
		return nil
	}

	path := filepath.Join(dir, filepath.Base(part.Filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	logger.Status("Attachment saved to: %s", path)
	return nil
}

// loadFirstTabular reads the first file in dir, by name, with a tabular extension.
func (s *MailService) loadFirstTabular(dir string, req domain.FetchRequest) (*domain.Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if !s.codec.IsTabular(e.Name()) {
			logger.Status("Skipping unknown filetype: %s", e.Name())
			continue
		}

		full := filepath.Join(dir, e.Name())
		table, err := s.codec.Load(full, req.Sheet)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", e.Name(), err)
		}
		if req.DeleteAfterLoad {
			if err := os.Remove(full); err != nil {
				return nil, err
			}
			logger.Status("Removed %s", full)
		}
		if table == nil {
			return nil, fmt.Errorf("%w: no table in %s", domain.ErrNotFound, e.Name())
		}
		return table, nil
	}

	logger.Status("No files downloaded or directory is empty.")
	return nil, fmt.Errorf("%w: no tabular file in %s", domain.ErrNotFound, dir)
}

// Send mails a plain-text message with one attachment per source.
// Tables are attached as CSV named by their title; files keep their base name.
// Nothing is sent when titles and attachments do not pair up.
func (s *MailService) Send(ctx context.Context, req domain.SendRequest) domain.SendResult {
	if len(req.Attachments) != len(req.Titles) {
		err := fmt.Errorf("%w: %d attachments for %d titles", domain.ErrValidation, len(req.Attachments), len(req.Titles))
		logger.Status("Attachment creation error: the number of data items must match the number of file titles.")
		return domain.SendResult{Err: err}
	}

	attachments := make([]domain.Attachment, 0, len(req.Attachments))
	for i, src := range req.Attachments {
		att, err := s.attachment(src, req.Titles[i])
		if err != nil {
			logger.Status("Attachment creation error: %v", err)
			return domain.SendResult{Err: err}
		}
		attachments = append(attachments, att)
	}

	raw, err := ComposeMessage(s.sender, req.To, req.Subject, req.Body, attachments)
	if err != nil {
		return domain.SendResult{Err: err}
	}
	id, err := s.mailbox.SendRaw(ctx, raw)
	if err != nil {
		logger.Status("An error occurred: %v", err)
		return domain.SendResult{Err: err}
	}
	logger.Status("Message Id: %s", id)
	return domain.SendResult{Sent: true, MessageID: id}
}

func (s *MailService) attachment(src domain.AttachmentSource, title string) (domain.Attachment, error) {
	switch {
	case src.Table != nil:
		data, err := s.codec.EncodeCSV(src.Table)
		if err != nil {
			return domain.Attachment{}, err
		}
		return domain.Attachment{Filename: title, Data: data}, nil
	case src.Path != "":
		info, err := os.Stat(src.Path)
		if err != nil || !info.Mode().IsRegular() {
			return domain.Attachment{}, fmt.Errorf("%w: %q is not a readable file", domain.ErrValidation, src.Path)
		}
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return domain.Attachment{}, err
		}
		return domain.Attachment{Filename: filepath.Base(src.Path), Data: data}, nil
	default:
		return domain.Attachment{}, fmt.Errorf("%w: attachment must be a table or a file path", domain.ErrUnsupportedType)
	}
}

// ComposeMessage renders a multipart/mixed message with a plain-text body
// and base64-encoded attachments.
func ComposeMessage(from, to, subject, body string, attachments []domain.Attachment) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	headers := []struct{ name, value string }{
		{"MIME-Version", "1.0"},
		{"To", to},
		{"From", from},
		{"Subject", mime.QEncoding.Encode("utf-8", subject)},
		{"Content-Type", "multipart/mixed; boundary=" + mw.Boundary()},
	}
	for _, h := range headers {
		if h.value == "" {
			continue
		}
		fmt.Fprintf(&buf, "%s: %s\r\n", h.name, h.value)
	}
	buf.WriteString("\r\n")

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {`text/plain; charset="utf-8"`},
		"Content-Transfer-Encoding": {"7bit"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(body)); err != nil {
		return nil, err
	}

	for _, att := range attachments {
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"application/octet-stream"},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": att.Filename})},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64Lines(part, att.Data); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBase64Lines(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := min(base64LineLength, len(encoded))
		if _, err := w.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
