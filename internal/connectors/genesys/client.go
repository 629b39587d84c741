package genesys

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure Client implements the interfaces.
var (
	_ driven.ConversationQuerier = (*Client)(nil)
	_ driven.UserDirectory       = (*Client)(nil)
)

const (
	conversationQueryPath = "/api/v2/analytics/conversations/details/query"
	usersPath             = "/api/v2/users"
	usersPageSize         = 100
)

// APIBaseURL returns the platform API host for an environment
// such as "mypurecloud.com" or "usw2.pure.cloud".
func APIBaseURL(environment string) string {
	return "https://api." + environment
}

// LoginBaseURL returns the login host for an environment.
func LoginBaseURL(environment string) string {
	return "https://login." + environment
}

// Client calls the platform API with a bearer token.
type Client struct {
	baseURL    string
	tokens     driven.TokenProvider
	httpClient *http.Client
}

// New creates a client for the given API base URL.
func New(baseURL string, tokens driven.TokenProvider) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// QueryConversations posts one page of a conversation details query.
func (c *Client) QueryConversations(
	ctx context.Context, query domain.ConversationQuery,
) ([]*domain.Record, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	logger.Debug("genesys: query page %d for %d conversations",
		query.Paging.PageNumber, len(query.ConversationIDs()))

	var out struct {
		Conversations []*domain.Record `json:"conversations"`
	}
	if err := c.do(ctx, http.MethodPost, c.baseURL+conversationQueryPath, body, &out); err != nil {
		return nil, fmt.Errorf("conversation details query: %w", err)
	}
	return out.Conversations, nil
}

// ListUsers returns every user in the organisation.
func (c *Client) ListUsers(ctx context.Context) ([]*domain.Record, error) {
	var users []*domain.Record
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("pageSize", fmt.Sprint(usersPageSize))
		q.Set("pageNumber", fmt.Sprint(page))

		var out struct {
			Entities  []*domain.Record `json:"entities"`
			PageCount int              `json:"pageCount"`
		}
		if err := c.do(ctx, http.MethodGet, c.baseURL+usersPath+"?"+q.Encode(), nil, &out); err != nil {
			return nil, fmt.Errorf("list users page %d: %w", page, err)
		}
		users = append(users, out.Entities...)
		if len(out.Entities) == 0 || page >= out.PageCount {
			return users, nil
		}
	}
}

// do sends an authenticated JSON request and decodes the response into out.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrParse, err)
	}
	return nil
}
