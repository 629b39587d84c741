package google

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// quotaReasons are the 403 reasons Google uses for throttling.
var quotaReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"quotaExceeded":         true,
}

// IsRateLimited returns true if the error indicates throttling.
func IsRateLimited(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	if gerr.Code == http.StatusTooManyRequests {
		return true
	}
	if gerr.Code == http.StatusForbidden {
		for _, item := range gerr.Errors {
			if quotaReasons[item.Reason] {
				return true
			}
		}
	}
	return false
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	if errors.Is(err, domain.ErrNotFound) {
		return true
	}
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}

// WrapError converts a Google API error into a *domain.TransportError that
// also matches the closest domain sentinel. Other errors are returned as-is.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	te := &domain.TransportError{Service: "google", StatusCode: gerr.Code, Body: gerr.Message}
	switch {
	case gerr.Code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", domain.ErrAuthRequired, te)
	case gerr.Code == http.StatusNotFound:
		return fmt.Errorf("%w: %w", domain.ErrNotFound, te)
	case IsRateLimited(gerr):
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, te)
	default:
		return te
	}
}
