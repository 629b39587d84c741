package salesforce

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

const maxErrorBody = 4096

// checkResponse converts a non-2xx response into a *domain.TransportError.
// An expired or revoked session also matches domain.ErrAuthRequired, and a
// missing report or object matches domain.ErrNotFound.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	te := &domain.TransportError{
		Service:    "salesforce",
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", domain.ErrAuthRequired, te)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", domain.ErrNotFound, te)
	default:
		return te
	}
}
