//nolint:noctx // Test file uses http.Get for convenience; context not required in tests
package oauth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

func startServer(t *testing.T, state string) *CallbackServer {
	t.Helper()
	server := NewCallbackServer(0, state)
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Stop() })
	return server
}

func callback(t *testing.T, server *CallbackServer, query url.Values) {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/?%s", server.Port(), query.Encode()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCallbackServer_PicksPort(t *testing.T) {
	server := startServer(t, "s")

	assert.NotZero(t, server.Port())
	assert.Equal(t, fmt.Sprintf("http://localhost:%d/", server.Port()), server.RedirectURI())
}

func TestCallbackServer_PortInUse(t *testing.T) {
	first := startServer(t, "s")

	err := NewCallbackServer(first.Port(), "s").Start()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestCallbackServer_StopTwice(t *testing.T) {
	server := NewCallbackServer(0, "s")
	require.NoError(t, server.Stop())
	require.NoError(t, server.Start())
	require.NoError(t, server.Stop())
	require.NoError(t, server.Stop())
}

func TestCallbackServer_Success(t *testing.T) {
	server := startServer(t, "state-1")

	callback(t, server, url.Values{"state": {"state-1"}, "code": {"abc"}})

	code, err := server.WaitForCode(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "abc", code)
}

func TestCallbackServer_Failures(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
	}{
		{"state mismatch", url.Values{"state": {"other"}, "code": {"abc"}}},
		{"missing state", url.Values{"code": {"abc"}}},
		{"missing code", url.Values{"state": {"state-1"}}},
		{"provider error", url.Values{"error": {"access_denied"}, "error_description": {"denied"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := startServer(t, "state-1")

			callback(t, server, tt.query)

			_, err := server.WaitForCode(context.Background(), time.Second)
			assert.ErrorIs(t, err, domain.ErrAuthInvalid)
		})
	}
}

func TestCallbackServer_Timeout(t *testing.T) {
	server := startServer(t, "s")

	_, err := server.WaitForCode(context.Background(), 20*time.Millisecond)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestFindAvailablePort(t *testing.T) {
	port, err := FindAvailablePort(DefaultPort, DefaultPort+portRange)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, DefaultPort)
}

func TestAuthorize(t *testing.T) {
	var challenge string
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		sum := sha256.Sum256([]byte(r.PostForm.Get("code_verifier")))
		assert.Equal(t, challenge, base64.RawURLEncoding.EncodeToString(sum[:]))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	cfg := &oauth2.Config{
		ClientID: "client",
		Endpoint: oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenSrv.URL},
	}
	open := func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		q := u.Query()
		challenge = q.Get("code_challenge")
		assert.Equal(t, "S256", q.Get("code_challenge_method"))
		assert.Equal(t, "offline", q.Get("access_type"))
		redirect := q.Get("redirect_uri") + "?" + url.Values{"state": {q.Get("state")}, "code": {"the-code"}}.Encode()
		go func() {
			if resp, err := http.Get(redirect); err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}

	tok, err := Authorize(context.Background(), cfg, open, 5*time.Second)

	require.NoError(t, err)
	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, "rt", tok.RefreshToken)
	assert.Contains(t, cfg.RedirectURL, "http://localhost:")
}
