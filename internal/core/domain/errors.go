package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed or invalid input.
	ErrValidation = errors.New("validation failed")

	// ErrParse indicates a response or file could not be parsed.
	ErrParse = errors.New("parse failed")

	// ErrUnsupportedType indicates an unrecognised file extension.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSheetRequired indicates a workbook has several sheets and none was named.
	ErrSheetRequired = errors.New("sheet name required")

	// Authentication Errors.

	// ErrMissingCredential indicates a required config store key is absent.
	ErrMissingCredential = errors.New("missing credential")

	// ErrAuthRequired indicates the vendor rejected the request as unauthenticated.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the authentication credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrTokenRefreshFailed indicates token refresh operation failed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// Transport Errors.

	// ErrTransport indicates a vendor call failed or returned a non-success status.
	ErrTransport = errors.New("transport error")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// MissingCredential returns an error naming the absent config keys.
func MissingCredential(keys ...string) error {
	return fmt.Errorf("%w: %s", ErrMissingCredential, strings.Join(keys, ", "))
}

// TransportError carries the status and body of a failed vendor call.
type TransportError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.StatusCode, e.Body)
}

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// SheetChoiceError lists the sheets of a workbook when the caller did not name one.
type SheetChoiceError struct {
	Sheets []string
}

func (e *SheetChoiceError) Error() string {
	return fmt.Sprintf("%s: workbook contains sheets %s", ErrSheetRequired, strings.Join(e.Sheets, ", "))
}

// Is reports whether target is ErrSheetRequired.
func (e *SheetChoiceError) Is(target error) bool {
	return target == ErrSheetRequired
}
