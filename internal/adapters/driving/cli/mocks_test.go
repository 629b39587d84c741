package cli

import (
	"bytes"
	"context"
	"sort"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
)

// runRoot executes rootCmd with args and returns everything written to
// stdout and stderr. Flags are reset afterwards.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag beneath c to its default.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if slice, ok := f.Value.(pflag.SliceValue); ok {
			_ = slice.Replace([]string{})
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// withServices injects s for the duration of the test.
func withServices(t *testing.T, s *Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() { SetServices(&Services{}) })
}

// mockSettings is a mock implementation of driving.SettingsService.
type mockSettings struct {
	settings domain.Settings
	values   map[string]string
	err      error
}

func newMockSettings() *mockSettings {
	return &mockSettings{settings: domain.DefaultSettings(), values: map[string]string{}}
}

func (m *mockSettings) Get() domain.Settings { return m.settings }

func (m *mockSettings) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	if value == "" {
		delete(m.values, key)
		return nil
	}
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

func (m *mockSettings) Path() string { return "/home/user/.tabula/config.toml" }

// mockAuth is a mock implementation of driving.AuthService.
type mockAuth struct {
	code  string
	calls []string
	err   error
}

func (m *mockAuth) CheckGenesys(context.Context) error {
	m.calls = append(m.calls, "genesys")
	return m.err
}

func (m *mockAuth) SalesforceAuthorizeURL() (string, error) {
	return "https://login.salesforce.com/services/oauth2/authorize?client_id=id", m.err
}

func (m *mockAuth) ExchangeSalesforceCode(_ context.Context, code string) error {
	m.code = code
	return m.err
}

func (m *mockAuth) RefreshSalesforce(context.Context) error {
	m.calls = append(m.calls, "salesforce-refresh")
	return m.err
}

func (m *mockAuth) AuthorizeGmail(context.Context) (string, error) {
	return "/home/user/.tabula/gmail_token.json", m.err
}

// mockToolkit is a mock implementation of driving.Toolkit.
type mockToolkit struct {
	conversations driving.ConversationService
	records       *mockRecords
	explorer      *mockExplorer
	publisher     *mockPublisher
	mail          *mockMail
	err           error
}

func (m *mockToolkit) Conversations() (driving.ConversationService, error) {
	return m.conversations, m.err
}

func (m *mockToolkit) Records() (driving.RecordService, error) {
	return m.records, m.err
}

func (m *mockToolkit) Explorer() (driving.ExplorerService, error) {
	return m.explorer, m.err
}

func (m *mockToolkit) Publisher(context.Context) (driving.PublisherService, error) {
	return m.publisher, m.err
}

func (m *mockToolkit) Mail(context.Context) (driving.MailService, error) {
	return m.mail, m.err
}

// mockRecords is a mock implementation of driving.RecordService.
type mockRecords struct {
	table *domain.Table
	soql  string
}

func (m *mockRecords) Query(_ context.Context, soql string) (*domain.Table, error) {
	m.soql = soql
	return m.table, nil
}

func (m *mockRecords) Report(context.Context, string) (*domain.Table, error) {
	return m.table, nil
}

// mockExplorer is a mock implementation of driving.ExplorerService.
type mockExplorer struct {
	result  domain.ExploreResult
	upload  domain.UploadResult
	req     domain.ExploreRequest
	uploads []domain.UploadRequest
}

func (m *mockExplorer) BuildTree(context.Context, domain.Folder) (*domain.Table, error) {
	return m.result.Tree, nil
}

func (m *mockExplorer) Explore(_ context.Context, req domain.ExploreRequest) (domain.ExploreResult, error) {
	m.req = req
	return m.result, nil
}

func (m *mockExplorer) Upload(_ context.Context, req domain.UploadRequest) domain.UploadResult {
	m.uploads = append(m.uploads, req)
	return m.upload
}

// mockPublisher is a mock implementation of driving.PublisherService.
type mockPublisher struct {
	result domain.PublishResult
	req    domain.PublishRequest
}

func (m *mockPublisher) Publish(_ context.Context, req domain.PublishRequest) domain.PublishResult {
	m.req = req
	return m.result
}

func (m *mockPublisher) ReadSheet(context.Context, string, string) (*domain.Table, error) {
	return domain.NewTable("a"), nil
}

// mockMail is a mock implementation of driving.MailService.
type mockMail struct {
	table  *domain.Table
	result domain.SendResult
	fetch  domain.FetchRequest
	send   domain.SendRequest
}

func (m *mockMail) FetchReport(_ context.Context, req domain.FetchRequest) (*domain.Table, error) {
	m.fetch = req
	return m.table, nil
}

func (m *mockMail) Send(_ context.Context, req domain.SendRequest) domain.SendResult {
	m.send = req
	return m.result
}
