package genesys

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 4096

// checkResponse converts a non-2xx response into a *domain.TransportError.
// 401 and 429 responses also match domain.ErrAuthRequired and
// domain.ErrRateLimited.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	te := &domain.TransportError{
		Service:    "genesys",
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", domain.ErrAuthRequired, te)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, te)
	default:
		return te
	}
}
