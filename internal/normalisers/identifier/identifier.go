// Package identifier cleans columns of contact center identifiers.
package identifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

var canonicalID = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// placeholders are values the source system writes instead of an ID.
var placeholders = map[string]bool{
	"Pending": true,
	"admin":   true,
}

// StripPrefix removes everything up to and including the last "/".
func StripPrefix(v string) string {
	if i := strings.LastIndex(v, "/"); i >= 0 {
		return v[i+1:]
	}
	return v
}

// IsCanonical reports whether v is a lowercase hyphenated UUID.
func IsCanonical(v string) bool {
	return canonicalID.MatchString(v)
}

// CleanIDColumn strips path prefixes from column, then keeps only rows whose
// stripped value is a canonical ID. Placeholder, nil and non-text values are
// dropped. The input table is not modified.
func CleanIDColumn(t *domain.Table, column string) (*domain.Table, error) {
	values, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: column %q", domain.ErrNotFound, column)
	}

	stripped := make([]string, len(values))
	keep := make([]bool, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = StripPrefix(s)
		stripped[i] = s
		keep[i] = !placeholders[s] && IsCanonical(s)
	}

	var kept []int
	out := t.Filter(func(i int) bool {
		if keep[i] {
			kept = append(kept, i)
		}
		return keep[i]
	})
	for row, src := range kept {
		if err := out.Set(row, column, stripped[src]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
