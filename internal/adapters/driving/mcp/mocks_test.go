package mcp

import (
	"context"
	"sort"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
)

// mockToolkit is a mock implementation of driving.Toolkit.
type mockToolkit struct {
	conversations *mockConversationService
	records       *mockRecordService
	explorer      *mockExplorerService
	err           error
}

func (m *mockToolkit) Conversations() (driving.ConversationService, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.conversations, nil
}

func (m *mockToolkit) Records() (driving.RecordService, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *mockToolkit) Explorer() (driving.ExplorerService, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.explorer, nil
}

func (m *mockToolkit) Publisher(context.Context) (driving.PublisherService, error) {
	return nil, m.err
}

func (m *mockToolkit) Mail(context.Context) (driving.MailService, error) {
	return nil, m.err
}

// mockRecordService is a mock implementation of driving.RecordService.
type mockRecordService struct {
	table    *domain.Table
	err      error
	soql     string
	reportID string
}

func (m *mockRecordService) Query(_ context.Context, soql string) (*domain.Table, error) {
	m.soql = soql
	return m.table, m.err
}

func (m *mockRecordService) Report(_ context.Context, reportID string) (*domain.Table, error) {
	m.reportID = reportID
	return m.table, m.err
}

// mockExplorerService is a mock implementation of driving.ExplorerService.
type mockExplorerService struct {
	result domain.ExploreResult
	err    error
	req    domain.ExploreRequest
}

func (m *mockExplorerService) BuildTree(context.Context, domain.Folder) (*domain.Table, error) {
	return m.result.Tree, m.err
}

func (m *mockExplorerService) Explore(_ context.Context, req domain.ExploreRequest) (domain.ExploreResult, error) {
	m.req = req
	return m.result, m.err
}

func (m *mockExplorerService) Upload(context.Context, domain.UploadRequest) domain.UploadResult {
	return domain.UploadResult{Err: m.err}
}

// mockConversationService is a mock implementation of driving.ConversationService.
type mockConversationService struct {
	table     *domain.Table
	err       error
	ids       []any
	column    string
	intervals []domain.DateInterval
}

func (m *mockConversationService) BuildPayloads(
	[]string, []domain.DateInterval, int,
) ([]domain.ConversationQuery, error) {
	return nil, m.err
}

func (m *mockConversationService) PlanQueries(
	*domain.Table, string, []domain.DateInterval,
) ([]domain.ConversationQuery, error) {
	return nil, m.err
}

func (m *mockConversationService) FetchAllPages(context.Context, domain.ConversationQuery) (*domain.Table, error) {
	return m.table, m.err
}

func (m *mockConversationService) FetchDetails(
	_ context.Context, table *domain.Table, column string, intervals []domain.DateInterval,
) (*domain.Table, error) {
	m.ids, _ = table.Column(column)
	m.column = column
	m.intervals = intervals
	return m.table, m.err
}

func (m *mockConversationService) Users(context.Context) (*domain.Table, error) {
	return m.table, m.err
}

// mockSettings is a mock implementation of driving.SettingsService.
type mockSettings struct {
	settings domain.Settings
	values   map[string]string
}

func (m *mockSettings) Get() domain.Settings { return m.settings }

func (m *mockSettings) Set(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *mockSettings) Value(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockSettings) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *mockSettings) Path() string { return "/tmp/config.toml" }
