package salesforce

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// Defaults for the web-server flow.
const (
	DefaultLoginURL    = "https://login.salesforce.com"
	DefaultRedirectURL = "https://localhost/"
	DefaultAPIVersion  = "v60.0"
)

// OAuthConfig returns the web-server flow configuration for a connected app.
func OAuthConfig(s domain.SalesforceSettings) *oauth2.Config {
	return OAuthConfigWithLogin(s, DefaultLoginURL)
}

// OAuthConfigWithLogin is OAuthConfig against an explicit login host.
func OAuthConfigWithLogin(s domain.SalesforceSettings, loginURL string) *oauth2.Config {
	redirect := s.RedirectURL
	if redirect == "" {
		redirect = DefaultRedirectURL
	}
	return &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURL:  redirect,
		Endpoint: oauth2.Endpoint{
			AuthURL:   loginURL + "/services/oauth2/authorize",
			TokenURL:  loginURL + "/services/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthorizeURL returns the page the operator visits to grant access.
// After approval the browser is redirected with a code parameter.
func AuthorizeURL(cfg *oauth2.Config) string {
	return cfg.AuthCodeURL("")
}

// ExchangeCode trades an authorization code for tokens.
// The returned token carries the refresh token to store.
func ExchangeCode(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.ErrorCode != "" {
			return nil, fmt.Errorf("%w: %s - %s", domain.ErrAuthInvalid, rerr.ErrorCode, rerr.ErrorDescription)
		}
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token response has no refresh_token", domain.ErrAuthInvalid)
	}
	return tok, nil
}

// InstanceURL returns the instance host reported alongside a token, if any.
func InstanceURL(tok *oauth2.Token) string {
	if s, ok := tok.Extra("instance_url").(string); ok {
		return s
	}
	return ""
}
