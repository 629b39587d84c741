// Package tabular reads and writes table files.
//
// Supported formats are CSV and TSV (permissive parse with header-row
// recovery), XLSX workbooks (via excelize), legacy XLS workbooks (via
// extrame/xls) and ZIP archives wrapping a CSV.
// Codec implements driven.TabularCodec.
package tabular

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure Codec implements the interface.
var _ driven.TabularCodec = (*Codec)(nil)

// Recognised extensions.
const (
	ExtCSV  = ".csv"
	ExtTSV  = ".tsv"
	ExtXLSX = ".xlsx"
	ExtXLS  = ".xls"
	ExtZIP  = ".zip"
)

// Codec dispatches table reads on file extension.
type Codec struct {
	scratchDir string
}

// NewCodec creates a codec. ZIP archives are extracted beneath scratchDir;
// if empty, the system temporary directory is used.
func NewCodec(scratchDir string) *Codec {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	return &Codec{scratchDir: scratchDir}
}

// IsTabular reports whether fileName has a recognised table extension.
func (c *Codec) IsTabular(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ExtCSV, ExtTSV, ExtXLSX, ExtXLS, ExtZIP:
		return true
	default:
		return false
	}
}

// Load reads a table from a local file. sheet selects a workbook sheet
// and is ignored for other formats. A ZIP archive without a CSV member
// yields a nil table and no error.
func (c *Codec) Load(path, sheet string) (*domain.Table, error) {
	logger.Debug("tabular: loading %s", path)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ExtCSV:
		return ReadCSV(path)
	case ExtTSV:
		return ReadTSV(path)
	case ExtXLSX:
		return ReadWorkbookFile(path, sheet)
	case ExtXLS:
		return ReadLegacyWorkbookFile(path, sheet)
	case ExtZIP:
		return ReadZIP(path, c.scratchDir)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, ext)
	}
}

// LoadBytes reads a table from in-memory content named by fileName.
func (c *Codec) LoadBytes(fileName string, data []byte, sheet string) (*domain.Table, error) {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ExtCSV:
		return ParseDelimited(data, ',')
	case ExtTSV:
		return ParseDelimited(data, '\t')
	case ExtXLSX:
		return ReadWorkbook(data, sheet)
	case ExtXLS:
		return ReadLegacyWorkbook(data, sheet)
	case ExtZIP:
		return ReadZIPBytes(data, c.scratchDir)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, ext)
	}
}

// EncodeCSV renders a table as UTF-8 CSV with a header row.
func (c *Codec) EncodeCSV(t *domain.Table) ([]byte, error) {
	return WriteCSV(t)
}

// EncodeWorkbook renders tables as a workbook with one sheet per table.
func (c *Codec) EncodeWorkbook(tables []domain.NamedTable) ([]byte, error) {
	return WriteWorkbook(tables)
}
