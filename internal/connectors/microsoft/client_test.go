package microsoft

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

type staticToken struct {
	err error
}

func (s staticToken) GetToken(context.Context) (string, error) { return "t", s.err }
func (s staticToken) IsAuthenticated() bool                    { return s.err == nil }

func TestWrapError(t *testing.T) {
	tests := []struct {
		status int
		target error
	}{
		{http.StatusUnauthorized, domain.ErrAuthRequired},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusForbidden, domain.ErrTransport},
		{http.StatusBadGateway, domain.ErrTransport},
	}
	for _, tt := range tests {
		err := WrapError(tt.status, "body")
		assert.ErrorIs(t, err, tt.target, tt.status)
		var te *domain.TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "graph", te.Service)
	}
}

func TestClient_URL(t *testing.T) {
	c := NewClient(GraphBaseURL+"/", staticToken{})
	assert.Equal(t, "https://graph.microsoft.com/v1.0/sites/x", c.URL("/sites/x"))
	assert.Equal(t, "https://other/next", c.URL("https://other/next"))
}

func TestClient_ListAll_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"value":[1]}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, staticToken{}).ListAll(context.Background(), "/x", func(raw json.RawMessage) error {
		var v struct{}
		return json.Unmarshal(raw, &v)
	})

	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestClient_TokenError(t *testing.T) {
	err := NewClient("http://127.0.0.1:0", staticToken{err: domain.ErrTokenRefreshFailed}).GetJSON(context.Background(), "/x", nil)
	assert.ErrorIs(t, err, domain.ErrTokenRefreshFailed)
}

func TestClient_ThrottleOpensBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	c := NewClient(srv.URL, staticToken{})

	err := c.GetJSON(context.Background(), "/x", nil)
	require.ErrorIs(t, err, domain.ErrRateLimited)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.GetJSON(ctx, "/x", nil), context.DeadlineExceeded)
}

func TestClient_GetBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("12345678"))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, staticToken{})
	c.maxContentSize = 8

	data, err := c.GetBytes(context.Background(), "/content")

	require.NoError(t, err)
	assert.Equal(t, "12345678", string(data))
}

func TestClient_GetBytes_RejectsOversizedContent(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"declared length", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("123456789"))
		}},
		{"chunked", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("12345"))
			w.(http.Flusher).Flush()
			_, _ = w.Write([]byte("6789"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			c := NewClient(srv.URL, staticToken{})
			c.maxContentSize = 8

			data, err := c.GetBytes(context.Background(), "/content")

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Nil(t, data)
		})
	}
}
