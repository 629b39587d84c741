package google

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// Scopes requested by each connector.
var (
	GmailScopes  = []string{gmail.GmailModifyScope}
	SheetsScopes = []string{sheets.SpreadsheetsScope, drive.DriveScope}
)

// NewGmailService creates a Gmail API service using the provided TokenSource.
func NewGmailService(ctx context.Context, ts oauth2.TokenSource) (*gmail.Service, error) {
	return gmail.NewService(ctx, option.WithTokenSource(ts))
}

// NewSheetsService creates a Sheets API service using the provided TokenSource.
func NewSheetsService(ctx context.Context, ts oauth2.TokenSource) (*sheets.Service, error) {
	return sheets.NewService(ctx, option.WithTokenSource(ts))
}

// NewDriveService creates a Google Drive API service using the provided TokenSource.
func NewDriveService(ctx context.Context, ts oauth2.TokenSource) (*drive.Service, error) {
	return drive.NewService(ctx, option.WithTokenSource(ts))
}

// ServiceAccountTokenSource reads a service-account key file and returns a
// token source for the given scopes.
func ServiceAccountTokenSource(ctx context.Context, keyPath string, scopes ...string) (oauth2.TokenSource, error) {
	if keyPath == "" {
		return nil, domain.MissingCredential("google.service_account_path")
	}
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read service account key: %v", domain.ErrMissingCredential, err)
	}
	cfg, err := googleoauth.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: parse service account key: %v", domain.ErrAuthInvalid, err)
	}
	return cfg.TokenSource(ctx), nil
}

// InstalledAppConfig reads an OAuth client secrets file of the installed
// (desktop) application type.
func InstalledAppConfig(clientPath, redirectURL string, scopes ...string) (*oauth2.Config, error) {
	if clientPath == "" {
		return nil, domain.MissingCredential("google.oauth_client_path")
	}
	data, err := os.ReadFile(clientPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read oauth client: %v", domain.ErrMissingCredential, err)
	}
	cfg, err := googleoauth.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: parse oauth client: %v", domain.ErrAuthInvalid, err)
	}
	if redirectURL != "" {
		cfg.RedirectURL = redirectURL
	}
	return cfg, nil
}
