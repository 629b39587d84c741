package connectors

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/tabula/internal/adapters/driven/auth"
	"github.com/custodia-labs/tabula/internal/adapters/driven/oauth"
	"github.com/custodia-labs/tabula/internal/connectors/genesys"
	"github.com/custodia-labs/tabula/internal/connectors/google"
	"github.com/custodia-labs/tabula/internal/connectors/google/gmail"
	"github.com/custodia-labs/tabula/internal/connectors/google/sheets"
	"github.com/custodia-labs/tabula/internal/connectors/microsoft"
	"github.com/custodia-labs/tabula/internal/connectors/microsoft/sharepoint"
	"github.com/custodia-labs/tabula/internal/connectors/salesforce"
	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure Factory implements the interface.
var _ driven.VendorFactory = (*Factory)(nil)

// SettingsSource resolves the current vendor settings.
// This interface is satisfied by services.SettingsService.
type SettingsSource interface {
	Get() domain.Settings
}

// Factory creates vendor clients on demand. Token providers are created
// once per Factory so every client of a vendor shares one token cache.
type Factory struct {
	store    driven.ConfigStore
	settings SettingsSource
	consent  Consent

	// Overridable endpoints.
	genesysTokenURL string
	salesforceLogin string
	graphBaseURL    string

	mu         sync.Mutex
	genesysTP  *auth.ConfigTokenProvider
	salesTP    *auth.ConfigTokenProvider
	sharePoint driven.TokenProvider
}

// NewFactory creates a factory. consent runs the browser authorization
// flow for Gmail and may be nil when that flow is not offered.
func NewFactory(store driven.ConfigStore, settings SettingsSource, consent Consent) *Factory {
	return &Factory{
		store:           store,
		settings:        settings,
		consent:         consent,
		salesforceLogin: salesforce.DefaultLoginURL,
		graphBaseURL:    microsoft.GraphBaseURL,
	}
}

// ContactCenter returns a Genesys Cloud client.
func (f *Factory) ContactCenter() (driven.ContactCenter, error) {
	s := f.settings.Get().Genesys
	tp, err := f.genesysProvider(s)
	if err != nil {
		return nil, err
	}
	return genesys.New(genesys.APIBaseURL(s.Environment), tp), nil
}

// RecordSource returns a Salesforce client. The instance URL must be
// configured or recorded by a code exchange.
func (f *Factory) RecordSource() (driven.RecordSource, error) {
	s := f.settings.Get().Salesforce
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return salesforce.New(s.InstanceURL, s.APIVersion, f.salesforceProvider(s)), nil
}

// DocumentLibrary returns the configured SharePoint site.
func (f *Factory) DocumentLibrary() (driven.DocumentLibrary, error) {
	s := f.settings.Get().SharePoint

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sharePoint == nil {
		tp, err := auth.NewSharePointProvider(s)
		if err != nil {
			return nil, err
		}
		f.sharePoint = tp
	}
	client := microsoft.NewClient(f.graphBaseURL, f.sharePoint)
	return sharepoint.New(client, s.Hostname, s.SitePath), nil
}

// SpreadsheetBackend returns a Sheets backend authenticated with the
// service-account key.
func (f *Factory) SpreadsheetBackend(ctx context.Context) (driven.SpreadsheetBackend, error) {
	s := f.settings.Get().Google
	ts, err := google.ServiceAccountTokenSource(ctx, s.ServiceAccountPath, google.SheetsScopes...)
	if err != nil {
		return nil, err
	}
	sheetsSvc, err := google.NewSheetsService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	driveSvc, err := google.NewDriveService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return sheets.New(sheetsSvc, driveSvc), nil
}

// Mailbox returns the Gmail mailbox of the authorised user. Refreshed
// tokens are written back to the token file.
func (f *Factory) Mailbox(ctx context.Context) (driven.Mailbox, error) {
	s := f.settings.Get().Google
	cfg, err := google.InstalledAppConfig(s.OAuthClientPath, "", google.GmailScopes...)
	if err != nil {
		return nil, err
	}
	tok, err := oauth.LoadToken(s.OAuthTokenPath)
	if err != nil {
		return nil, fmt.Errorf("%w; run 'tabula auth gmail'", err)
	}
	logger.Debug("connectors: gmail token loaded from %s", s.OAuthTokenPath)

	ts := oauth.NewFileTokenSource(s.OAuthTokenPath, tok, cfg.TokenSource(ctx, tok))
	svc, err := google.NewGmailService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return gmail.New(svc), nil
}

func (f *Factory) genesysProvider(s domain.GenesysSettings) (*auth.ConfigTokenProvider, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.genesysTP == nil {
		cfg := genesys.TokenConfig(s)
		if f.genesysTokenURL != "" {
			cfg = genesys.TokenConfigWithURL(s, f.genesysTokenURL)
		}
		f.genesysTP = auth.NewGenesysProvider(f.store, cfg)
	}
	return f.genesysTP, nil
}

func (f *Factory) salesforceProvider(s domain.SalesforceSettings) *auth.ConfigTokenProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.salesTP == nil {
		f.salesTP = auth.NewSalesforceProvider(f.store, f.salesforceConfig(s))
	}
	return f.salesTP
}
