package domain

import "strings"

// Settings holds the resolved configuration for every vendor integration.
type Settings struct {
	Genesys     GenesysSettings
	Salesforce  SalesforceSettings
	SharePoint  SharePointSettings
	Google      GoogleSettings
	DownloadDir string
}

// GenesysSettings configures the Genesys Cloud client-credentials grant.
type GenesysSettings struct {
	Environment  string
	ClientID     string
	ClientSecret string
}

// Validate checks that the client-credentials grant can be attempted.
func (s GenesysSettings) Validate() error {
	var missing []string
	if s.Environment == "" {
		missing = append(missing, "genesys.environment")
	}
	if s.ClientID == "" {
		missing = append(missing, "genesys.client_id")
	}
	if s.ClientSecret == "" {
		missing = append(missing, "genesys.client_secret")
	}
	if len(missing) > 0 {
		return MissingCredential(missing...)
	}
	return nil
}

// SalesforceSettings configures the Salesforce web-server OAuth flow.
type SalesforceSettings struct {
	InstanceURL  string
	APIVersion   string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Validate checks that the OAuth client is configured.
func (s SalesforceSettings) Validate() error {
	var missing []string
	if s.InstanceURL == "" {
		missing = append(missing, "salesforce.instance_url")
	}
	if s.ClientID == "" {
		missing = append(missing, "salesforce.client_id")
	}
	if s.ClientSecret == "" {
		missing = append(missing, "salesforce.client_secret")
	}
	if len(missing) > 0 {
		return MissingCredential(missing...)
	}
	return nil
}

// SharePointSettings configures app-only access to a SharePoint site.
type SharePointSettings struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	Hostname     string
	SitePath     string
	Library      string
	RootFolder   string
}

// Validate checks that the site and app registration are configured.
func (s SharePointSettings) Validate() error {
	var missing []string
	if s.TenantID == "" {
		missing = append(missing, "sharepoint.tenant_id")
	}
	if s.ClientID == "" {
		missing = append(missing, "sharepoint.client_id")
	}
	if s.ClientSecret == "" {
		missing = append(missing, "sharepoint.client_secret")
	}
	if s.Hostname == "" {
		missing = append(missing, "sharepoint.hostname")
	}
	if len(missing) > 0 {
		return MissingCredential(missing...)
	}
	return nil
}

// GoogleSettings locates the Google credential files and mail sender.
type GoogleSettings struct {
	ServiceAccountPath string
	OAuthClientPath    string
	OAuthTokenPath     string
	Sender             string
}

// Default settings.
const (
	DefaultGenesysEnvironment   = "use2.us-gov-pure.cloud"
	DefaultSalesforceAPIVersion = "v60.0"
	DefaultSalesforceRedirect   = "https://localhost/"
	DefaultLibrary              = "Documents"
	DefaultRootFolder           = "General"
)

// DefaultSettings returns the settings used for keys absent from the store.
// Paths that depend on the user's home directory are left empty.
func DefaultSettings() Settings {
	return Settings{
		Genesys: GenesysSettings{Environment: DefaultGenesysEnvironment},
		Salesforce: SalesforceSettings{
			APIVersion:  DefaultSalesforceAPIVersion,
			RedirectURL: DefaultSalesforceRedirect,
		},
		SharePoint: SharePointSettings{
			Library:    DefaultLibrary,
			RootFolder: DefaultRootFolder,
		},
	}
}

// IsSecretKey reports whether a config key holds a credential that must
// not be echoed.
func IsSecretKey(key string) bool {
	return strings.HasSuffix(key, "secret") || strings.HasSuffix(key, "_token")
}

// MaskSecret keeps the first and last four characters of long values.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
