// Package record reshapes decoded JSON records into flat, table-ready rows.
//
// Flatten collapses CRM relationship objects into "__"-joined keys,
// Normalize fully flattens nested objects into "."-joined keys, and
// ToEastern renders ISO-8601 timestamps in US Eastern time.
package record

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // America/New_York must resolve on hosts without a zoneinfo database.

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// RelationshipSeparator joins parent and child keys in Flatten.
const RelationshipSeparator = "__"

// metadataKey is the per-object metadata the CRM attaches to every record.
const metadataKey = "attributes"

// EasternLayout is the rendering of converted timestamps.
const EasternLayout = "2006-01-02 15:04:05 MST"

var (
	isoDateTime = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T`)
	eastern     = mustLoadLocation("America/New_York")
)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Flatten drops every "attributes" key and expands nested objects that
// carry "attributes" into prefixed keys, in place of the parent key.
// Other values, including nested objects without "attributes", pass
// through unchanged. Key order follows rec.
func Flatten(rec *domain.Record) *domain.Record {
	out := domain.NewRecord()
	flattenInto(out, rec, "")
	return out
}

func flattenInto(out, rec *domain.Record, prefix string) {
	for _, k := range rec.Keys() {
		v := rec.Value(k)
		key := k
		if prefix != "" {
			key = prefix + RelationshipSeparator + k
		}
		if nested, ok := v.(*domain.Record); ok && nested != nil {
			if _, rel := nested.Get(metadataKey); rel {
				flattenInto(out, nested, key)
				continue
			}
		}
		if k == metadataKey {
			continue
		}
		out.Set(key, v)
	}
}

// Normalize expands every nested object into "."-joined keys.
// Arrays are kept whole and rendered as JSON text by Scalar.
func Normalize(rec *domain.Record) *domain.Record {
	out := domain.NewRecord()
	normalizeInto(out, rec, "")
	return out
}

func normalizeInto(out, rec *domain.Record, prefix string) {
	for _, k := range rec.Keys() {
		v := rec.Value(k)
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(*domain.Record); ok && nested != nil && nested.Len() > 0 {
			normalizeInto(out, nested, key)
			continue
		}
		out.Set(key, v)
	}
}

// Scalar converts a decoded JSON value into a table cell.
// Objects and arrays become compact JSON text.
func Scalar(v any) any {
	switch v.(type) {
	case *domain.Record, map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(b)
	default:
		return v
	}
}

// Row maps each key of rec through convert, ready for
// Table.AppendOrderedRecord.
func Row(rec *domain.Record, convert func(any) any) map[string]any {
	row := make(map[string]any, rec.Len())
	for _, k := range rec.Keys() {
		row[k] = convert(rec.Value(k))
	}
	return row
}

// ToEastern converts ISO-8601 date-time strings to US Eastern time.
// Anything that is not such a string, or fails to parse, is returned unchanged.
func ToEastern(v any) any {
	s, ok := v.(string)
	if !ok || !isoDateTime.MatchString(s) {
		return v
	}
	t, ok := parseTimestamp(s)
	if !ok {
		return v
	}
	return t.In(eastern).Format(EasternLayout)
}

// FormatEastern parses s as a timestamp or calendar date and renders it in
// US Eastern time. Dates without a time are taken as midnight UTC.
// Unparseable input is returned unchanged.
func FormatEastern(s string) string {
	t, ok := parseTimestamp(s)
	if !ok {
		d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
		if err != nil {
			return s
		}
		t = d
	}
	return t.In(eastern).Format(EasternLayout)
}

// timestampLayouts are tried in order. Layouts without a zone parse as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
