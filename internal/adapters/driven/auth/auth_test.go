package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/tabula/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tabula/internal/core/domain"
)

func newStore(t *testing.T) *file.ConfigStore {
	t.Helper()
	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func countingFetcher(calls *int32, tok *oauth2.Token) Fetcher {
	return func(context.Context, *oauth2.Token) (*oauth2.Token, error) {
		atomic.AddInt32(calls, 1)
		copied := *tok
		return &copied, nil
	}
}

func TestConfigTokenProvider_FetchesAndPersists(t *testing.T) {
	store := newStore(t)
	var calls int32
	expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	p := NewConfigTokenProvider("genesys", store, countingFetcher(&calls, &oauth2.Token{AccessToken: "a1", Expiry: expiry}))

	assert.False(t, p.IsAuthenticated())

	tok, err := p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a1", tok)
	assert.Equal(t, "a1", store.GetString("genesys.access_token"))
	assert.Equal(t, expiry.Format(time.RFC3339), store.GetString("genesys.token_expiry"))
	assert.True(t, p.IsAuthenticated())

	_, err = p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestConfigTokenProvider_ReusesStoredToken(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("salesforce.access_token", "stored"))
	require.NoError(t, store.Set("salesforce.token_expiry", time.Now().Add(time.Hour).UTC().Format(time.RFC3339)))

	var calls int32
	p := NewConfigTokenProvider("salesforce", store, countingFetcher(&calls, &oauth2.Token{AccessToken: "new"}))

	tok, err := p.GetToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "stored", tok)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestConfigTokenProvider_StoredWithoutExpiryUsedAsIs(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("genesys.access_token", "manual"))

	var calls int32
	p := NewConfigTokenProvider("genesys", store, countingFetcher(&calls, &oauth2.Token{AccessToken: "new"}))

	tok, err := p.GetToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "manual", tok)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestConfigTokenProvider_RefreshesNearExpiry(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("salesforce.access_token", "old"))
	require.NoError(t, store.Set("salesforce.refresh_token", "r1"))
	require.NoError(t, store.Set("salesforce.token_expiry", time.Now().Add(time.Minute).UTC().Format(time.RFC3339)))

	var seen string
	p := NewConfigTokenProvider("salesforce", store, func(_ context.Context, cur *oauth2.Token) (*oauth2.Token, error) {
		seen = cur.RefreshToken
		return &oauth2.Token{AccessToken: "fresh", RefreshToken: "r2"}, nil
	})

	tok, err := p.GetToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)
	assert.Equal(t, "r1", seen)
	assert.Equal(t, "r2", store.GetString("salesforce.refresh_token"))
	assert.NotEmpty(t, store.GetString("salesforce.token_expiry"))
}

func TestConfigTokenProvider_Refresh(t *testing.T) {
	store := newStore(t)
	var calls int32
	p := NewConfigTokenProvider("genesys", store, countingFetcher(&calls, &oauth2.Token{AccessToken: "a"}))

	_, err := p.GetToken(context.Background())
	require.NoError(t, err)
	tok, err := p.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "a", tok.AccessToken)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestConfigTokenProvider_Store(t *testing.T) {
	store := newStore(t)
	var calls int32
	p := NewConfigTokenProvider("salesforce", store, countingFetcher(&calls, &oauth2.Token{AccessToken: "fetched"}))

	require.NoError(t, p.Store(&oauth2.Token{AccessToken: "exchanged", RefreshToken: "r1"}))
	tok, err := p.GetToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "exchanged", tok)
	assert.Equal(t, "r1", store.GetString("salesforce.refresh_token"))
	assert.NotEmpty(t, store.GetString("salesforce.token_expiry"))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestConfigTokenProvider_FetchError(t *testing.T) {
	p := NewConfigTokenProvider("genesys", newStore(t), func(context.Context, *oauth2.Token) (*oauth2.Token, error) {
		return nil, domain.ErrAuthInvalid
	})

	_, err := p.GetToken(context.Background())

	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	assert.Contains(t, err.Error(), "genesys token")
}

func TestConfigTokenProvider_InvalidateCache(t *testing.T) {
	store := newStore(t)
	var calls int32
	p := NewConfigTokenProvider("genesys", store, countingFetcher(&calls, &oauth2.Token{AccessToken: "a"}))

	_, err := p.GetToken(context.Background())
	require.NoError(t, err)
	p.InvalidateCache()
	require.NoError(t, store.Delete("genesys.access_token"))
	_, err = p.GetToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRefreshTokenFetcher_RequiresRefreshToken(t *testing.T) {
	fetch := RefreshTokenFetcher(&oauth2.Config{})

	_, err := fetch(context.Background(), &oauth2.Token{})

	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestRefreshTokenFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "r1", r.PostForm.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer"}`))
	}))
	defer srv.Close()

	cfg := &oauth2.Config{ClientID: "cid", Endpoint: oauth2.Endpoint{TokenURL: srv.URL, AuthStyle: oauth2.AuthStyleInParams}}
	p := NewSalesforceProvider(newStore(t), cfg)
	store := p.store
	require.NoError(t, store.Set("salesforce.refresh_token", "r1"))

	tok, err := p.GetToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "at", tok)
	assert.Equal(t, "r1", store.GetString("salesforce.refresh_token"))
}

func TestClientCredentialsFetcher_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"bad secret"}`))
	}))
	defer srv.Close()

	p := NewGenesysProvider(newStore(t), &clientcredentials.Config{ClientID: "id", ClientSecret: "s", TokenURL: srv.URL})

	_, err := p.GetToken(context.Background())

	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestClientCredentialsFetcher_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewGenesysProvider(newStore(t), &clientcredentials.Config{ClientID: "id", ClientSecret: "s", TokenURL: srv.URL})

	_, err := p.GetToken(context.Background())

	assert.ErrorIs(t, err, domain.ErrTokenRefreshFailed)
}

type fakeCredential struct {
	calls  int
	scopes []string
	token  azcore.AccessToken
	err    error
}

func (f *fakeCredential) GetToken(_ context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	f.calls++
	f.scopes = opts.Scopes
	return f.token, f.err
}

func TestCredentialTokenProvider_Caches(t *testing.T) {
	cred := &fakeCredential{token: azcore.AccessToken{Token: "g1", ExpiresOn: time.Now().Add(time.Hour)}}
	p := NewCredentialTokenProvider(cred, GraphScope)

	for range 3 {
		tok, err := p.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "g1", tok)
	}

	assert.Equal(t, 1, cred.calls)
	assert.Equal(t, []string{GraphScope}, cred.scopes)
	assert.True(t, p.IsAuthenticated())
}

func TestCredentialTokenProvider_RefetchesNearExpiry(t *testing.T) {
	cred := &fakeCredential{token: azcore.AccessToken{Token: "g1", ExpiresOn: time.Now().Add(time.Minute)}}
	p := NewCredentialTokenProvider(cred, GraphScope)

	_, _ = p.GetToken(context.Background())
	_, _ = p.GetToken(context.Background())

	assert.Equal(t, 2, cred.calls)
}

func TestCredentialTokenProvider_Error(t *testing.T) {
	p := NewCredentialTokenProvider(&fakeCredential{err: errors.New("AADSTS7000215")}, GraphScope)

	_, err := p.GetToken(context.Background())

	assert.ErrorIs(t, err, domain.ErrTokenRefreshFailed)
	assert.False(t, p.IsAuthenticated())
}

func TestNewSharePointProvider_Validates(t *testing.T) {
	_, err := NewSharePointProvider(domain.SharePointSettings{TenantID: "t"})
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}
