package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// mockQuerier serves canned conversation pages keyed by page number.
type mockQuerier struct {
	pages   map[int][]*domain.Record
	err     error
	queries []domain.ConversationQuery
}

func (m *mockQuerier) QueryConversations(_ context.Context, q domain.ConversationQuery) ([]*domain.Record, error) {
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	return m.pages[q.Paging.PageNumber], nil
}

// mockUsers is a mock implementation of driven.UserDirectory.
type mockUsers struct {
	users []*domain.Record
	err   error
}

func (m *mockUsers) ListUsers(context.Context) ([]*domain.Record, error) {
	return m.users, m.err
}

// mockRecordSource is a mock implementation of driven.RecordSource.
type mockRecordSource struct {
	records []*domain.Record
	report  *domain.Report
	err     error
}

func (m *mockRecordSource) Query(context.Context, string) ([]*domain.Record, error) {
	return m.records, m.err
}

func (m *mockRecordSource) Report(context.Context, string) (*domain.Report, error) {
	return m.report, m.err
}

// records decodes each JSON object into a record, keeping key order.
func records(t *testing.T, objects ...string) []*domain.Record {
	t.Helper()
	out := make([]*domain.Record, len(objects))
	for i, obj := range objects {
		out[i] = &domain.Record{}
		require.NoError(t, json.Unmarshal([]byte(obj), out[i]))
	}
	return out
}

// mockLibrary is an in-memory document library. Folders are keyed by
// library-relative path; "" is the library root.
type mockLibrary struct {
	libraries  []domain.Library
	folders    map[string]domain.Folder
	files      map[string][]domain.RemoteFile
	subfolders map[string][]string
	content    map[string][]byte
	uploads    map[string][]byte
	listCalls  int
	err        error
}

func newMockLibrary() *mockLibrary {
	return &mockLibrary{
		libraries:  []domain.Library{{ID: "lib-1", Title: "Documents"}},
		folders:    map[string]domain.Folder{"": {ID: "root", Name: "Documents"}},
		files:      make(map[string][]domain.RemoteFile),
		subfolders: make(map[string][]string),
		content:    make(map[string][]byte),
		uploads:    make(map[string][]byte),
	}
}

// addFolder registers a folder at path under its parent.
func (m *mockLibrary) addFolder(parent, name string) string {
	p := name
	if parent != "" {
		p = parent + "/" + name
	}
	m.folders[p] = domain.Folder{ID: "f-" + p, Name: name, Path: p}
	m.subfolders[parent] = append(m.subfolders[parent], p)
	return p
}

func (m *mockLibrary) addFile(folder, name string, data []byte) {
	url := "/sites/test/Documents/" + strings.TrimPrefix(folder+"/"+name, "/")
	m.files[folder] = append(m.files[folder], domain.RemoteFile{ID: url, Name: name, ServerRelativeURL: url})
	m.content[url] = data
}

func (m *mockLibrary) FindLibrary(_ context.Context, title string) (domain.Library, bool, error) {
	if m.err != nil {
		return domain.Library{}, false, m.err
	}
	for _, l := range m.libraries {
		if l.Title == title {
			return l, true, nil
		}
	}
	return domain.Library{}, false, nil
}

func (m *mockLibrary) FindFolder(_ context.Context, _ domain.Library, path string) (domain.Folder, bool, error) {
	f, ok := m.folders[path]
	return f, ok, nil
}

func (m *mockLibrary) ListChildren(_ context.Context, folder domain.Folder) ([]domain.RemoteFile, []domain.Folder, error) {
	m.listCalls++
	var subs []domain.Folder
	for _, p := range m.subfolders[folder.Path] {
		subs = append(subs, m.folders[p])
	}
	return m.files[folder.Path], subs, nil
}

func (m *mockLibrary) Download(_ context.Context, file domain.RemoteFile) ([]byte, error) {
	data, ok := m.content[file.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, file.ID)
	}
	return data, nil
}

func (m *mockLibrary) Upload(_ context.Context, folder domain.Folder, name string, data []byte) (string, error) {
	url := "/sites/test/Documents/" + strings.TrimPrefix(folder.Path+"/"+name, "/")
	m.uploads[url] = data
	return url, nil
}

// mockBackend records every spreadsheet call in order.
type mockBackend struct {
	workbooks map[string][]string
	values    map[string][][]any
	read      [][]string
	calls     []string
	shares    []string
	failOn    string
}

func newMockBackend() *mockBackend {
	return &mockBackend{workbooks: make(map[string][]string), values: make(map[string][][]any)}
}

func (m *mockBackend) record(call string) error {
	m.calls = append(m.calls, call)
	if m.failOn != "" && strings.HasPrefix(call, m.failOn) {
		return fmt.Errorf("%w: %s", domain.ErrTransport, call)
	}
	return nil
}

func (m *mockBackend) FindWorkbook(_ context.Context, title string) (domain.Workbook, bool, error) {
	if err := m.record("find " + title); err != nil {
		return domain.Workbook{}, false, err
	}
	if _, ok := m.workbooks[title]; !ok {
		return domain.Workbook{}, false, nil
	}
	return domain.Workbook{ID: "id-" + title, Title: title}, true, nil
}

func (m *mockBackend) CreateWorkbook(_ context.Context, title string) (domain.Workbook, error) {
	if err := m.record("create " + title); err != nil {
		return domain.Workbook{}, err
	}
	m.workbooks[title] = []string{domain.DefaultSheet}
	return domain.Workbook{ID: "id-" + title, Title: title}, nil
}

func (m *mockBackend) Share(_ context.Context, _ domain.Workbook, email string) error {
	m.shares = append(m.shares, email)
	return m.record("share " + email)
}

func (m *mockBackend) ListSheets(_ context.Context, wb domain.Workbook) ([]string, error) {
	return m.workbooks[wb.Title], m.record("list")
}

func (m *mockBackend) AddSheet(_ context.Context, wb domain.Workbook, sheet string) error {
	m.workbooks[wb.Title] = append(m.workbooks[wb.Title], sheet)
	return m.record("add " + sheet)
}

func (m *mockBackend) ClearSheet(_ context.Context, _ domain.Workbook, sheet string) error {
	delete(m.values, sheet)
	return m.record("clear " + sheet)
}

func (m *mockBackend) DeleteSheet(_ context.Context, wb domain.Workbook, sheet string) error {
	var kept []string
	for _, s := range m.workbooks[wb.Title] {
		if s != sheet {
			kept = append(kept, s)
		}
	}
	m.workbooks[wb.Title] = kept
	return m.record("delete " + sheet)
}

func (m *mockBackend) WriteValues(_ context.Context, _ domain.Workbook, sheet string, rows [][]any) error {
	m.values[sheet] = rows
	return m.record("write " + sheet)
}

func (m *mockBackend) FormatHeader(_ context.Context, _ domain.Workbook, sheet string, _ int) error {
	return m.record("format " + sheet)
}

func (m *mockBackend) AutoResize(_ context.Context, _ domain.Workbook, sheet string, _ int) error {
	return m.record("resize " + sheet)
}

func (m *mockBackend) ReadValues(_ context.Context, _ domain.Workbook, sheet string) ([][]string, error) {
	return m.read, m.record("read " + sheet)
}

// mockPrompter answers every question with the same reply.
type mockPrompter struct {
	answer    string
	questions []string
}

func (m *mockPrompter) Ask(question string) (string, error) {
	m.questions = append(m.questions, question)
	return m.answer, nil
}

// mockMailbox is a mock implementation of driven.Mailbox.
type mockMailbox struct {
	ids         []string
	messages    map[string]domain.MailMessage
	attachments map[string][]byte
	sent        [][]byte
	sendErr     error
}

func (m *mockMailbox) SearchMessageIDs(context.Context, string) ([]string, error) {
	return m.ids, nil
}

func (m *mockMailbox) GetMessage(_ context.Context, id string) (domain.MailMessage, error) {
	msg, ok := m.messages[id]
	if !ok {
		return domain.MailMessage{}, domain.ErrNotFound
	}
	return msg, nil
}

func (m *mockMailbox) GetAttachment(_ context.Context, _, attachmentID string) ([]byte, error) {
	return m.attachments[attachmentID], nil
}

func (m *mockMailbox) SendRaw(_ context.Context, raw []byte) (string, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.sent = append(m.sent, raw)
	return fmt.Sprintf("msg-%d", len(m.sent)), nil
}
