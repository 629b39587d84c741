// Package oauth persists OAuth tokens in JSON files.
package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// LoadToken reads a token file written by SaveToken.
// A missing file reports domain.ErrAuthRequired.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: no token at %s", domain.ErrAuthRequired, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("%w: token file %s: %v", domain.ErrParse, path, err)
	}
	return &tok, nil
}

// SaveToken writes a token with owner-only permissions.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// FileTokenSource writes every newly issued token back to its file so a
// rotated refresh token survives the process.
type FileTokenSource struct {
	path string
	base oauth2.TokenSource

	mu   sync.Mutex
	last string
}

// NewFileTokenSource wraps base. initial is the token base was seeded with.
func NewFileTokenSource(path string, initial *oauth2.Token, base oauth2.TokenSource) *FileTokenSource {
	s := &FileTokenSource{path: path, base: base}
	if initial != nil {
		s.last = initial.AccessToken
	}
	return s
}

// Token implements oauth2.TokenSource.
func (s *FileTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := SaveToken(s.path, tok); err != nil {
			return nil, err
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}
