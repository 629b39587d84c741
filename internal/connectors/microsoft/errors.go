package microsoft

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

const maxErrorBody = 4096

// WrapError converts a non-2xx Graph status into a *domain.TransportError
// that also matches the closest domain sentinel.
func WrapError(statusCode int, body string) error {
	te := &domain.TransportError{Service: "graph", StatusCode: statusCode, Body: body}
	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", domain.ErrAuthRequired, te)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", domain.ErrNotFound, te)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, te)
	default:
		return te
	}
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return WrapError(resp.StatusCode, strings.TrimSpace(string(body)))
}

// retryAfter reads a Retry-After header in seconds. Zero means absent.
func retryAfter(resp *http.Response) int {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return secs
}
