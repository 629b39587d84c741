package microsoft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
)

// GraphBaseURL is the Microsoft Graph v1.0 endpoint.
const GraphBaseURL = "https://graph.microsoft.com/v1.0"

// MaxContentSize caps downloaded file content. Larger files are rejected.
const MaxContentSize = 256 << 20

// Client sends authenticated Graph requests.
type Client struct {
	baseURL        string
	tokens         driven.TokenProvider
	httpClient     *http.Client
	rateLimiter    *RateLimiter
	maxContentSize int64
}

// NewClient creates a client for baseURL, normally GraphBaseURL.
func NewClient(baseURL string, tokens driven.TokenProvider) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		tokens:      tokens,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		rateLimiter: NewRateLimiter(DefaultRateLimit),

		maxContentSize: MaxContentSize,
	}
}

// URL resolves a path against the base URL. Absolute URLs are returned as-is.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return path
	}
	return c.baseURL + path
}

// GetJSON decodes the response of a GET into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, "", out)
}

// PutContent uploads raw bytes and decodes the response into out.
func (c *Client) PutContent(ctx context.Context, path string, data []byte, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, data, "application/octet-stream", out)
}

// GetBytes returns the body of a GET, following download redirects.
// A body larger than MaxContentSize is an ErrValidation, never a partial read.
func (c *Client) GetBytes(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.ContentLength > c.maxContentSize {
		return nil, fmt.Errorf("%w: content is %d bytes, limit is %d", domain.ErrValidation, resp.ContentLength, c.maxContentSize)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxContentSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read content: %v", domain.ErrTransport, err)
	}
	if int64(len(data)) > c.maxContentSize {
		return nil, fmt.Errorf("%w: content exceeds %d bytes", domain.ErrValidation, c.maxContentSize)
	}
	return data, nil
}

// ListAll pages through a collection, decoding each element of "value"
// with decode.
func (c *Client) ListAll(ctx context.Context, path string, decode func(json.RawMessage) error) error {
	next := path
	for next != "" {
		var page struct {
			Value    []json.RawMessage `json:"value"`
			NextLink string            `json:"@odata.nextLink"`
		}
		if err := c.GetJSON(ctx, next, &page); err != nil {
			return err
		}
		for _, raw := range page.Value {
			if err := decode(raw); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrParse, err)
			}
		}
		next = page.NextLink
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrParse, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	if err := checkResponse(resp); err != nil {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.rateLimiter.RecordRateLimitError(retryAfter(resp))
		}
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}
