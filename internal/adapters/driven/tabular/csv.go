package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/logger"
)

// ReadCSV reads a comma-separated file. Malformed lines are skipped.
// When at most one data row results, the header is assumed to be garbled:
// the file is re-read past the line DetectHeader picks, and the first
// remaining row becomes the header.
func ReadCSV(path string) (*domain.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseDelimited(data, ',')
}

// ReadTSV reads a tab-separated file. Malformed lines are skipped.
func ReadTSV(path string) (*domain.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseDelimited(data, '\t')
}

// ParseDelimited parses delimited text into a table.
func ParseDelimited(data []byte, delim rune) (*domain.Table, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	t, err := parseRecords(data, delim)
	if err != nil {
		return nil, err
	}
	if t.Len() > 1 || delim != ',' {
		return t, nil
	}

	lines := splitLines(string(data))
	idx, ok := DetectHeader(lines)
	if !ok {
		return t, nil
	}
	logger.Debug("tabular: header row detected at line %d", idx)
	if idx+1 >= len(lines) {
		return parseRecords([]byte(lines[idx]), delim)
	}
	return parseRecords([]byte(strings.Join(lines[idx+1:], "\n")), delim)
}

// DetectHeader returns the index of the first line that contains a comma,
// has no purely numeric field and differs from the line before it.
// The first line never qualifies.
func DetectHeader(lines []string) (int, bool) {
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if !strings.Contains(line, ",") || hasNumericField(line) {
			continue
		}
		if line != lines[i-1] {
			return i, true
		}
	}
	return 0, false
}

func hasNumericField(line string) bool {
	for _, part := range strings.Split(line, ",") {
		if isDigits(strings.TrimSpace(part)) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// parseRecords promotes the first record to the header. Records wider than
// the header are skipped; narrower ones are padded with nil.
func parseRecords(data []byte, delim rune) (*domain.Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var (
		t       *domain.Table
		width   int
		skipped int
	)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
		}
		if t == nil {
			header := UniqueHeaders(rec)
			t = domain.NewTable(header...)
			width = len(header)
			continue
		}
		if len(rec) > width {
			skipped++
			continue
		}
		row := make([]any, width)
		for i, v := range rec {
			row[i] = ParseCell(v)
		}
		if err := t.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	if skipped > 0 {
		logger.Debug("tabular: skipped %d malformed lines", skipped)
	}
	if t == nil {
		return domain.NewTable(), nil
	}
	return t, nil
}

// UniqueHeaders names blank headers "Unnamed: i" and suffixes repeats
// with ".1", ".2" and so on.
func UniqueHeaders(rec []string) []string {
	out := make([]string, len(rec))
	taken := make(map[string]bool, len(rec))
	for i, h := range rec {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for n := 1; taken[name]; n++ {
			name = h + "." + strconv.Itoa(n)
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

// ParseCell converts a text cell: empty becomes nil, integers become int64,
// decimals become float64. Numbers with leading zeros stay text.
func ParseCell(v string) any {
	if v == "" {
		return nil
	}
	s := strings.TrimSpace(v)
	if s == "" || hasLeadingZero(s) {
		return v
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "xXnN") {
		return f
	}
	return v
}

func hasLeadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}

// WriteCSV renders a table as UTF-8 CSV with a header row and no index.
func WriteCSV(t *domain.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns()); err != nil {
		return nil, err
	}
	record := make([]string, t.Width())
	for i := 0; i < t.Len(); i++ {
		for j, v := range t.Row(i) {
			record[j] = domain.FormatValue(v)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
