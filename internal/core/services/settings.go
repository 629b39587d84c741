package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyGenesysEnvironment    = "genesys.environment"
	KeyGenesysClientID       = "genesys.client_id"
	KeyGenesysClientSecret   = "genesys.client_secret"
	KeySalesforceInstanceURL = "salesforce.instance_url"
	KeySalesforceAPIVersion  = "salesforce.api_version"
	KeySalesforceClientID    = "salesforce.client_id"
	KeySalesforceSecret      = "salesforce.client_secret"
	KeySalesforceRedirectURL = "salesforce.redirect_url"
	KeySharePointTenantID    = "sharepoint.tenant_id"
	KeySharePointClientID    = "sharepoint.client_id"
	KeySharePointSecret      = "sharepoint.client_secret"
	KeySharePointHostname    = "sharepoint.hostname"
	KeySharePointSitePath    = "sharepoint.site_path"
	KeySharePointLibrary     = "sharepoint.library"
	KeySharePointRootFolder  = "sharepoint.root_folder"
	KeyGoogleServiceAccount  = "google.service_account_path"
	KeyGoogleOAuthClient     = "google.oauth_client_path"
	KeyGoogleOAuthToken      = "google.oauth_token_path"
	KeyGmailSender           = "gmail.sender"
	KeyDownloadDir           = "paths.download_dir"
)

// Keys written by the token providers rather than by users.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyGenesysAccessToken      = "genesys.access_token"
	KeySalesforceAccessToken   = "salesforce.access_token"
	KeySalesforceRefreshToken  = "salesforce.refresh_token"
	defaultGmailTokenFile      = "gmail_token.json"
	defaultDownloadsFolderName = "Downloads"
)

var settableKeys = map[string]bool{
	KeyGenesysEnvironment:     true,
	KeyGenesysClientID:        true,
	KeyGenesysClientSecret:    true,
	KeyGenesysAccessToken:     true,
	KeySalesforceInstanceURL:  true,
	KeySalesforceAPIVersion:   true,
	KeySalesforceClientID:     true,
	KeySalesforceSecret:       true,
	KeySalesforceRedirectURL:  true,
	KeySalesforceAccessToken:  true,
	KeySalesforceRefreshToken: true,
	KeySharePointTenantID:     true,
	KeySharePointClientID:     true,
	KeySharePointSecret:       true,
	KeySharePointHostname:     true,
	KeySharePointSitePath:     true,
	KeySharePointLibrary:      true,
	KeySharePointRootFolder:   true,
	KeyGoogleServiceAccount:   true,
	KeyGoogleOAuthClient:      true,
	KeyGoogleOAuthToken:       true,
	KeyGmailSender:            true,
	KeyDownloadDir:            true,
}

// SettableKeys returns the keys accepted by Set in sorted order.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService resolves vendor settings from the config store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get returns the current settings. Absent keys take their defaults.
func (s *SettingsService) Get() domain.Settings {
	defaults := domain.DefaultSettings()

	return domain.Settings{
		Genesys: domain.GenesysSettings{
			Environment:  s.getString(KeyGenesysEnvironment, defaults.Genesys.Environment),
			ClientID:     s.configStore.GetString(KeyGenesysClientID),
			ClientSecret: s.configStore.GetString(KeyGenesysClientSecret),
		},
		Salesforce: domain.SalesforceSettings{
			InstanceURL:  s.configStore.GetString(KeySalesforceInstanceURL),
			APIVersion:   s.getString(KeySalesforceAPIVersion, defaults.Salesforce.APIVersion),
			ClientID:     s.configStore.GetString(KeySalesforceClientID),
			ClientSecret: s.configStore.GetString(KeySalesforceSecret),
			RedirectURL:  s.getString(KeySalesforceRedirectURL, defaults.Salesforce.RedirectURL),
		},
		SharePoint: domain.SharePointSettings{
			TenantID:     s.configStore.GetString(KeySharePointTenantID),
			ClientID:     s.configStore.GetString(KeySharePointClientID),
			ClientSecret: s.configStore.GetString(KeySharePointSecret),
			Hostname:     s.configStore.GetString(KeySharePointHostname),
			SitePath:     s.configStore.GetString(KeySharePointSitePath),
			Library:      s.getString(KeySharePointLibrary, defaults.SharePoint.Library),
			RootFolder:   s.getString(KeySharePointRootFolder, defaults.SharePoint.RootFolder),
		},
		Google: domain.GoogleSettings{
			ServiceAccountPath: s.configStore.GetString(KeyGoogleServiceAccount),
			OAuthClientPath:    s.configStore.GetString(KeyGoogleOAuthClient),
			OAuthTokenPath:     s.getString(KeyGoogleOAuthToken, s.defaultTokenPath()),
			Sender:             s.configStore.GetString(KeyGmailSender),
		},
		DownloadDir: s.getString(KeyDownloadDir, defaultDownloadDir()),
	}
}

// Set stores one config key. Unknown keys are rejected.
func (s *SettingsService) Set(key, value string) error {
	if !settableKeys[key] {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrValidation, key)
	}
	if value == "" {
		return s.configStore.Delete(key)
	}
	return s.configStore.Set(key, value)
}

// Value returns one config key and whether it is set.
func (s *SettingsService) Value(key string) (string, bool) {
	v, ok := s.configStore.Get(key)
	if !ok {
		return "", false
	}
	return fmt.Sprint(v), true
}

// Keys returns every stored key in sorted order.
func (s *SettingsService) Keys() []string {
	return s.configStore.Keys()
}

// Path returns the config file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return defaultVal
}

func (s *SettingsService) defaultTokenPath() string {
	return filepath.Join(filepath.Dir(s.configStore.Path()), defaultGmailTokenFile)
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDownloadsFolderName
	}
	return filepath.Join(home, defaultDownloadsFolderName)
}
