package driving

import "github.com/custodia-labs/tabula/internal/core/domain"

// TableService reads and writes local table files.
type TableService interface {
	// Load reads a CSV, TSV, XLSX, XLS or ZIP file. sheet selects the
	// worksheet of a multi-sheet workbook.
	Load(path, sheet string) (*domain.Table, error)

	// Save writes a table to path, as a workbook when the extension is
	// .xlsx and as CSV otherwise.
	Save(t *domain.Table, path string) error

	// CleanIDs keeps the rows of table whose column holds a conversation ID.
	CleanIDs(table *domain.Table, column string) (*domain.Table, error)
}
