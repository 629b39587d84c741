package record

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

var (
	special    = regexp.MustCompile(`[^a-z0-9_]+`)
	lowerUpper = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	acronym    = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
)

// CleanName converts a column label to a lowercase identifier.
// Runs of characters other than letters, digits and underscores become a
// single underscore, so "Account Owner: Full Name" becomes
// "account_owner_full_name" while "Owner__Name" keeps its separator.
// Camel case is split first: "CreatedDate" becomes "created_date".
func CleanName(name string) string {
	out := acronym.ReplaceAllString(name, "${1}_${2}")
	out = lowerUpper.ReplaceAllString(out, "${1}_${2}")
	out = special.ReplaceAllString(strings.ToLower(out), "_")
	out = strings.Trim(out, "_")
	if out == "" {
		return "column"
	}
	return out
}

// CleanNames renames every column of t with CleanName.
// Names that collide get a numeric suffix in column order.
func CleanNames(t *domain.Table) error {
	cols := t.Columns()
	taken := make(map[string]bool, len(cols))
	names := make([]string, len(cols))
	for i, c := range cols {
		base := CleanName(c)
		name := base
		for n := 2; taken[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		taken[name] = true
		names[i] = name
	}
	return t.RenameColumns(names)
}
