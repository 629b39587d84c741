package genesys

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// TokenConfig returns the client-credentials grant for an organisation.
// Credentials are sent as a Basic authorization header.
func TokenConfig(s domain.GenesysSettings) *clientcredentials.Config {
	return TokenConfigWithURL(s, LoginBaseURL(s.Environment)+"/oauth/token")
}

// TokenConfigWithURL is TokenConfig against an explicit token endpoint.
func TokenConfigWithURL(s domain.GenesysSettings, tokenURL string) *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
}
