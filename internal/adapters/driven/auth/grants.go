package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
)

// ClientCredentialsFetcher runs the client-credentials grant on every fetch.
func ClientCredentialsFetcher(cfg *clientcredentials.Config) Fetcher {
	return func(ctx context.Context, _ *oauth2.Token) (*oauth2.Token, error) {
		tok, err := cfg.Token(ctx)
		if err != nil {
			return nil, tokenError(err)
		}
		return tok, nil
	}
}

// RefreshTokenFetcher redeems the stored refresh token.
// Without one it fails with domain.ErrAuthRequired.
func RefreshTokenFetcher(cfg *oauth2.Config) Fetcher {
	return func(ctx context.Context, current *oauth2.Token) (*oauth2.Token, error) {
		if current == nil || current.RefreshToken == "" {
			return nil, fmt.Errorf("%w: no refresh token stored; run the authorization flow first", domain.ErrAuthRequired)
		}
		tok, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: current.RefreshToken}).Token()
		if err != nil {
			return nil, tokenError(err)
		}
		return tok, nil
	}
}

// tokenError classifies a token endpoint failure. Rejected credentials map
// to domain.ErrAuthInvalid; anything else to domain.ErrTokenRefreshFailed.
func tokenError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		if rerr.ErrorCode == "invalid_grant" || rerr.ErrorCode == "invalid_client" ||
			(rerr.Response != nil && rerr.Response.StatusCode == 401) {
			return fmt.Errorf("%w: %s %s", domain.ErrAuthInvalid, rerr.ErrorCode, rerr.ErrorDescription)
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrTokenRefreshFailed, err)
}

// NewGenesysProvider returns a provider backed by the client-credentials grant.
func NewGenesysProvider(store driven.ConfigStore, cfg *clientcredentials.Config) *ConfigTokenProvider {
	return NewConfigTokenProvider("genesys", store, ClientCredentialsFetcher(cfg))
}

// NewSalesforceProvider returns a provider backed by the stored refresh token.
func NewSalesforceProvider(store driven.ConfigStore, cfg *oauth2.Config) *ConfigTokenProvider {
	return NewConfigTokenProvider("salesforce", store, RefreshTokenFetcher(cfg))
}
