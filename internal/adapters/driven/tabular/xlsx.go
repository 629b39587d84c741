package tabular

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/logger"
)

// ReadWorkbookFile reads one sheet of a workbook file.
func ReadWorkbookFile(path, sheet string) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return readWorkbook(f, sheet)
}

// ReadWorkbook reads one sheet of an in-memory workbook.
//
// A single-sheet workbook is read whole. A workbook with several sheets
// requires sheet to be named; otherwise a *domain.SheetChoiceError lists
// the available sheets and no data is returned.
func ReadWorkbook(data []byte, sheet string) (*domain.Table, error) {
	return readWorkbook(bytes.NewReader(data), sheet)
}

func readWorkbook(r io.Reader, sheet string) (*domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %v", domain.ErrParse, err)
	}
	defer f.Close()

	sheet, err = chooseSheet(f.GetSheetList(), sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", domain.ErrNotFound, sheet, err)
	}
	return rowsToTable(rows), nil
}

// chooseSheet returns sheet, or the only sheet when sheet is empty.
// An empty sheet with several to choose from is a *domain.SheetChoiceError.
func chooseSheet(sheets []string, sheet string) (string, error) {
	if sheet != "" {
		return sheet, nil
	}
	if len(sheets) != 1 {
		logger.Status("Workbook has multiple sheets, choose one of: %v", sheets)
		return "", &domain.SheetChoiceError{Sheets: sheets}
	}
	return sheets[0], nil
}

// rowsToTable promotes the first row to the header.
// Rows shorter than the header are padded with nil.
func rowsToTable(rows [][]string) *domain.Table {
	if len(rows) == 0 {
		return domain.NewTable()
	}
	header := UniqueHeaders(rows[0])
	t := domain.NewTable(header...)
	for _, rec := range rows[1:] {
		row := make([]any, len(header))
		for i, v := range rec {
			if i < len(header) {
				row[i] = ParseCell(v)
			}
		}
		_ = t.AppendRow(row...)
	}
	return t
}

// WriteWorkbook renders one sheet per table, named after each table.
// The default sheet is removed unless a table claims its name.
func WriteWorkbook(tables []domain.NamedTable) ([]byte, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no tables to write", domain.ErrValidation)
	}

	f := excelize.NewFile()
	defer f.Close()

	keepDefault := false
	for i, nt := range tables {
		name := nt.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if name == domain.DefaultSheet {
			keepDefault = true
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("adding sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, nt.Table); err != nil {
			return nil, err
		}
	}
	if !keepDefault {
		if err := f.DeleteSheet(domain.DefaultSheet); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, t *domain.Table) error {
	header := make([]any, 0, t.Width())
	for _, c := range t.Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i := 0; i < t.Len(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := t.Row(i)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
