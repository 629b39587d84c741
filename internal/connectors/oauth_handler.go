package connectors

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/tabula/internal/adapters/driven/oauth"
	"github.com/custodia-labs/tabula/internal/connectors/google"
	"github.com/custodia-labs/tabula/internal/connectors/salesforce"
	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure Factory implements the AuthService interface.
var _ driving.AuthService = (*Factory)(nil)

// keySalesforceInstanceURL records the instance host returned by a code exchange.
const keySalesforceInstanceURL = "salesforce.instance_url"

// Consent runs an interactive authorization code flow for cfg and returns
// the issued token. The callback server in internal/adapters/driving/oauth
// provides the standard implementation.
type Consent func(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)

// CheckGenesys obtains a fresh client-credentials token and stores it.
func (f *Factory) CheckGenesys(ctx context.Context) error {
	tp, err := f.genesysProvider(f.settings.Get().Genesys)
	if err != nil {
		return err
	}
	if _, err := tp.Refresh(ctx); err != nil {
		return err
	}
	logger.Status("Genesys Cloud credentials accepted.")
	return nil
}

// SalesforceAuthorizeURL returns the consent page of the connected app.
func (f *Factory) SalesforceAuthorizeURL() (string, error) {
	s := f.settings.Get().Salesforce
	if s.ClientID == "" {
		return "", domain.MissingCredential("salesforce.client_id")
	}
	return salesforce.AuthorizeURL(f.salesforceConfig(s)), nil
}

// ExchangeSalesforceCode redeems an authorization code. The refresh token
// is stored for later runs and the instance URL the login host reports
// replaces the configured one.
func (f *Factory) ExchangeSalesforceCode(ctx context.Context, code string) error {
	s := f.settings.Get().Salesforce
	if err := requireClient(s); err != nil {
		return err
	}
	if code == "" {
		return fmt.Errorf("%w: authorization code is empty", domain.ErrValidation)
	}

	tok, err := salesforce.ExchangeCode(ctx, f.salesforceConfig(s), code)
	if err != nil {
		return err
	}
	if err := f.salesforceProvider(s).Store(tok); err != nil {
		return err
	}
	if instance := salesforce.InstanceURL(tok); instance != "" {
		if err := f.store.Set(keySalesforceInstanceURL, instance); err != nil {
			return fmt.Errorf("save instance url: %w", err)
		}
		logger.Status("Salesforce instance: %s", instance)
	}
	logger.Status("Salesforce refresh token stored.")
	return nil
}

// RefreshSalesforce redeems the stored refresh token for a new access token.
func (f *Factory) RefreshSalesforce(ctx context.Context) error {
	s := f.settings.Get().Salesforce
	if err := requireClient(s); err != nil {
		return err
	}
	if _, err := f.salesforceProvider(s).Refresh(ctx); err != nil {
		return err
	}
	logger.Status("Salesforce access token refreshed.")
	return nil
}

// AuthorizeGmail runs the browser consent flow for the installed-app
// client and writes the token file.
func (f *Factory) AuthorizeGmail(ctx context.Context) (string, error) {
	if f.consent == nil {
		return "", fmt.Errorf("%w: browser authorization is not available", domain.ErrValidation)
	}
	s := f.settings.Get().Google
	cfg, err := google.InstalledAppConfig(s.OAuthClientPath, "", google.GmailScopes...)
	if err != nil {
		return "", err
	}

	tok, err := f.consent(ctx, cfg)
	if err != nil {
		return "", err
	}
	if err := oauth.SaveToken(s.OAuthTokenPath, tok); err != nil {
		return "", err
	}
	logger.Status("Gmail token saved to %s", s.OAuthTokenPath)
	return s.OAuthTokenPath, nil
}

func (f *Factory) salesforceConfig(s domain.SalesforceSettings) *oauth2.Config {
	return salesforce.OAuthConfigWithLogin(s, f.salesforceLogin)
}

func requireClient(s domain.SalesforceSettings) error {
	var missing []string
	if s.ClientID == "" {
		missing = append(missing, "salesforce.client_id")
	}
	if s.ClientSecret == "" {
		missing = append(missing, "salesforce.client_secret")
	}
	if len(missing) > 0 {
		return domain.MissingCredential(missing...)
	}
	return nil
}
