package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
)

// Ensure CredentialTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*CredentialTokenProvider)(nil)

// GraphScope is the app-only scope for Microsoft Graph.
const GraphScope = "https://graph.microsoft.com/.default"

// CredentialTokenProvider adapts an Azure credential to driven.TokenProvider.
type CredentialTokenProvider struct {
	cred   azcore.TokenCredential
	scopes []string

	mu            sync.Mutex
	cached        azcore.AccessToken
	refreshBuffer time.Duration
}

// NewCredentialTokenProvider wraps cred for the given scopes.
func NewCredentialTokenProvider(cred azcore.TokenCredential, scopes ...string) *CredentialTokenProvider {
	return &CredentialTokenProvider{
		cred:          cred,
		scopes:        scopes,
		refreshBuffer: 5 * time.Minute,
	}
}

// NewSharePointProvider returns an app-only Graph token provider using the
// client-secret credential of the configured app registration.
func NewSharePointProvider(s domain.SharePointSettings) (*CredentialTokenProvider, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	cred, err := azidentity.NewClientSecretCredential(s.TenantID, s.ClientID, s.ClientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthInvalid, err)
	}
	return NewCredentialTokenProvider(cred, GraphScope), nil
}

// GetToken returns a cached token until it is within the refresh buffer of expiry.
func (p *CredentialTokenProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached.Token != "" && time.Until(p.cached.ExpiresOn) > p.refreshBuffer {
		return p.cached.Token, nil
	}
	tok, err := p.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: p.scopes})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTokenRefreshFailed, err)
	}
	p.cached = tok
	return tok.Token, nil
}

// IsAuthenticated reports whether a token has been obtained and is unexpired.
func (p *CredentialTokenProvider) IsAuthenticated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cached.Token != "" && time.Now().Before(p.cached.ExpiresOn)
}
