// Package auth provides driven.TokenProvider implementations for the
// vendor APIs. Tokens obtained from a grant are persisted in the config
// store so later runs reuse them until they near expiry.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure ConfigTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*ConfigTokenProvider)(nil)

// Fetcher obtains a fresh token from a grant. current carries whatever is
// stored, so a refresh-token grant can read current.RefreshToken.
type Fetcher func(ctx context.Context, current *oauth2.Token) (*oauth2.Token, error)

// Config store key suffixes under the provider's prefix.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyTokenExpiry  = "token_expiry"
)

// ConfigTokenProvider caches an access token in memory and in the config
// store under "<prefix>.access_token", refreshing it through a Fetcher.
// A stored access token without an expiry is used as-is.
type ConfigTokenProvider struct {
	prefix string
	store  driven.ConfigStore
	fetch  Fetcher

	mu              sync.RWMutex
	cachedToken     string
	cacheExpiry     time.Time
	refreshBuffer   time.Duration
	defaultLifetime time.Duration
	now             func() time.Time
}

// NewConfigTokenProvider creates a provider persisting under prefix.
func NewConfigTokenProvider(prefix string, store driven.ConfigStore, fetch Fetcher) *ConfigTokenProvider {
	return &ConfigTokenProvider{
		prefix:          prefix,
		store:           store,
		fetch:           fetch,
		refreshBuffer:   5 * time.Minute,
		defaultLifetime: time.Hour,
		now:             time.Now,
	}
}

func (p *ConfigTokenProvider) key(suffix string) string {
	return p.prefix + "." + suffix
}

// GetToken returns a valid access token, fetching a new one if necessary.
func (p *ConfigTokenProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.RLock()
	if p.cachedToken != "" && p.now().Before(p.cacheExpiry) {
		token := p.cachedToken
		p.mu.RUnlock()
		return token, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cachedToken != "" && p.now().Before(p.cacheExpiry) {
		return p.cachedToken, nil
	}

	stored := p.stored()
	if stored.AccessToken != "" {
		if stored.Expiry.IsZero() {
			p.cache(stored.AccessToken, p.now().Add(p.defaultLifetime))
			return p.cachedToken, nil
		}
		if stored.Expiry.Sub(p.now()) > p.refreshBuffer {
			p.cache(stored.AccessToken, stored.Expiry.Add(-p.refreshBuffer))
			return p.cachedToken, nil
		}
	}

	tok, err := p.refreshLocked(ctx, stored)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Refresh fetches and stores a new token regardless of the cached one.
func (p *ConfigTokenProvider) Refresh(ctx context.Context) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshLocked(ctx, p.stored())
}

// Store saves a token obtained outside the provider, such as from an
// authorization code exchange, and makes it the cached token.
func (p *ConfigTokenProvider) Store(tok *oauth2.Token) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if tok.Expiry.IsZero() {
		tok.Expiry = p.now().Add(p.defaultLifetime)
	}
	if err := p.save(tok, ""); err != nil {
		return fmt.Errorf("save %s token: %w", p.prefix, err)
	}
	p.cache(tok.AccessToken, tok.Expiry.Add(-p.refreshBuffer))
	return nil
}

func (p *ConfigTokenProvider) refreshLocked(ctx context.Context, current *oauth2.Token) (*oauth2.Token, error) {
	logger.Debug("auth: fetching %s token", p.prefix)
	tok, err := p.fetch(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("%s token: %w", p.prefix, err)
	}
	if tok.Expiry.IsZero() {
		tok.Expiry = p.now().Add(p.defaultLifetime)
	}
	if err := p.save(tok, current.RefreshToken); err != nil {
		return nil, fmt.Errorf("save %s token: %w", p.prefix, err)
	}
	p.cache(tok.AccessToken, tok.Expiry.Add(-p.refreshBuffer))
	return tok, nil
}

func (p *ConfigTokenProvider) stored() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  p.store.GetString(p.key(keyAccessToken)),
		RefreshToken: p.store.GetString(p.key(keyRefreshToken)),
	}
	if raw := p.store.GetString(p.key(keyTokenExpiry)); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			tok.Expiry = t
		} else {
			logger.Warn("auth: ignoring unparseable %s: %q", p.key(keyTokenExpiry), raw)
		}
	}
	return tok
}

func (p *ConfigTokenProvider) save(tok *oauth2.Token, previousRefresh string) error {
	if err := p.store.Set(p.key(keyAccessToken), tok.AccessToken); err != nil {
		return err
	}
	if err := p.store.Set(p.key(keyTokenExpiry), tok.Expiry.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if tok.RefreshToken != "" && tok.RefreshToken != previousRefresh {
		return p.store.Set(p.key(keyRefreshToken), tok.RefreshToken)
	}
	return nil
}

func (p *ConfigTokenProvider) cache(token string, until time.Time) {
	p.cachedToken = token
	p.cacheExpiry = until
}

// IsAuthenticated reports whether a token is cached or stored.
func (p *ConfigTokenProvider) IsAuthenticated() bool {
	p.mu.RLock()
	if p.cachedToken != "" && p.now().Before(p.cacheExpiry) {
		p.mu.RUnlock()
		return true
	}
	p.mu.RUnlock()
	return p.store.GetString(p.key(keyAccessToken)) != ""
}

// InvalidateCache clears the in-memory token. The stored token is kept.
func (p *ConfigTokenProvider) InvalidateCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cachedToken = ""
	p.cacheExpiry = time.Time{}
}
