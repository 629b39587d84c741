package services

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tabula/internal/adapters/driven/tabular"
	"github.com/custodia-labs/tabula/internal/core/domain"
)

func newMailService(t *testing.T, mb *mockMailbox) (*MailService, string) {
	t.Helper()
	dir := t.TempDir()
	return NewMailService(mb, tabular.NewCodec(t.TempDir()), "reports@example.com", dir), dir
}

func reportMailbox() *mockMailbox {
	return &mockMailbox{
		ids: []string{"m2", "m1"},
		messages: map[string]domain.MailMessage{
			"m2": {
				ID:      "m2",
				Subject: "Daily",
				Date:    "Tue, 4 Jun 2024 09:30:00 -0400",
				Parts: []domain.MailPart{
					{Filename: "readme.txt", Data: []byte("hi")},
					{Filename: "report.csv", AttachmentID: "att-1"},
				},
			},
		},
		attachments: map[string][]byte{"att-1": []byte("agent,calls\nAda,3\nBob,4\n")},
	}
}

func TestFetchReport(t *testing.T) {
	svc, dir := newMailService(t, reportMailbox())

	tbl, err := svc.FetchReport(context.Background(), domain.FetchRequest{})

	require.NoError(t, err)
	assert.Equal(t, []string{"agent", "calls"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())
	assert.FileExists(t, filepath.Join(dir, "readme.txt"))
	assert.FileExists(t, filepath.Join(dir, "report.csv"))
}

func TestFetchReport_DeleteAfterLoad(t *testing.T) {
	svc, _ := newMailService(t, reportMailbox())
	store := t.TempDir()

	_, err := svc.FetchReport(context.Background(), domain.FetchRequest{StoreDir: store, DeleteAfterLoad: true})

	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(store, "report.csv"))
	assert.FileExists(t, filepath.Join(store, "readme.txt"))
}

func TestFetchReport_FirstTabularByName(t *testing.T) {
	mb := reportMailbox()
	svc, dir := newMailService(t, mb)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_previous.tsv"), []byte("x\ty\n1\t2\n3\t4\n"), 0600))

	tbl, err := svc.FetchReport(context.Background(), domain.FetchRequest{})

	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, tbl.Columns())
}

func TestFetchReport_NoMessages(t *testing.T) {
	svc, _ := newMailService(t, &mockMailbox{})

	_, err := svc.FetchReport(context.Background(), domain.FetchRequest{Query: "subject: none"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFetchReport_NoTabularAttachment(t *testing.T) {
	mb := reportMailbox()
	msg := mb.messages["m2"]
	msg.Parts = msg.Parts[:1]
	mb.messages["m2"] = msg
	svc, _ := newMailService(t, mb)

	_, err := svc.FetchReport(context.Background(), domain.FetchRequest{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSend_CountMismatch(t *testing.T) {
	mb := &mockMailbox{}
	svc, _ := newMailService(t, mb)

	res := svc.Send(context.Background(), domain.SendRequest{
		To:          "a@x.com",
		Attachments: []domain.AttachmentSource{{Path: "a.csv"}, {Path: "b.csv"}},
		Titles:      []string{"one.csv"},
	})

	assert.False(t, res.Sent)
	assert.ErrorIs(t, res.Err, domain.ErrValidation)
	assert.Empty(t, mb.sent)
}

func TestSend_MissingFileNotSent(t *testing.T) {
	mb := &mockMailbox{}
	svc, _ := newMailService(t, mb)

	res := svc.Send(context.Background(), domain.SendRequest{
		To:          "a@x.com",
		Attachments: []domain.AttachmentSource{{Path: "/does/not/exist.csv"}},
		Titles:      []string{"x.csv"},
	})

	assert.False(t, res.Sent)
	assert.ErrorIs(t, res.Err, domain.ErrValidation)
	assert.Empty(t, mb.sent)
}

func TestSend_ComposesMultipart(t *testing.T) {
	mb := &mockMailbox{}
	svc, _ := newMailService(t, mb)
	local := filepath.Join(t.TempDir(), "extra.txt")
	require.NoError(t, os.WriteFile(local, []byte("extra"), 0600))
	tbl := domain.NewTable("agent")
	require.NoError(t, tbl.AppendRow("Ada"))

	res := svc.Send(context.Background(), domain.SendRequest{
		To:          "a@x.com, b@x.com",
		Subject:     "Daily report",
		Body:        "See attached.",
		Attachments: []domain.AttachmentSource{{Table: tbl}, {Path: local}},
		Titles:      []string{"calls.csv", "ignored.txt"},
	})

	require.NoError(t, res.Err)
	assert.True(t, res.Sent)
	assert.Equal(t, "msg-1", res.MessageID)
	require.Len(t, mb.sent, 1)

	msg, err := mail.ReadMessage(bytes.NewReader(mb.sent[0]))
	require.NoError(t, err)
	assert.Equal(t, "reports@example.com", msg.Header.Get("From"))
	assert.Equal(t, "a@x.com, b@x.com", msg.Header.Get("To"))
	assert.Equal(t, "Daily report", msg.Header.Get("Subject"))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	var names []string
	var bodies []string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		names = append(names, part.FileName())
		bodies = append(bodies, string(data))
	}
	require.Len(t, names, 3)
	assert.Equal(t, []string{"", "calls.csv", "extra.txt"}, names)
	assert.Equal(t, "See attached.", bodies[0])
}
