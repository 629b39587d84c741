package tabular

import (
	"bytes"
	"fmt"
	"os"

	"github.com/extrame/xls"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// legacyCharset decodes byte strings in BIFF5 workbooks; BIFF8 text is UTF-16.
const legacyCharset = "utf-8"

// ReadLegacyWorkbookFile reads one sheet of a BIFF (.xls) workbook file.
func ReadLegacyWorkbookFile(path, sheet string) (*domain.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ReadLegacyWorkbook(data, sheet)
}

// ReadLegacyWorkbook reads one sheet of an in-memory BIFF (.xls) workbook.
// Sheet selection follows ReadWorkbook.
func ReadLegacyWorkbook(data []byte, sheet string) (t *domain.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("%w: reading legacy workbook: %v", domain.ErrParse, r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), legacyCharset)
	if err != nil {
		return nil, fmt.Errorf("%w: opening legacy workbook: %v", domain.ErrParse, err)
	}

	sheets := make(map[string]*xls.WorkSheet, wb.NumSheets())
	names := make([]string, 0, wb.NumSheets())
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		sheets[ws.Name] = ws
		names = append(names, ws.Name)
	}

	name, err := chooseSheet(names, sheet)
	if err != nil {
		return nil, err
	}
	ws, ok := sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: sheet %q", domain.ErrNotFound, name)
	}
	return rowsToTable(legacyRows(ws)), nil
}

// legacyRows reads every row up to MaxRow. Missing rows come back empty.
func legacyRows(ws *xls.WorkSheet) [][]string {
	rows := make([][]string, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for c := 0; c <= row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, trimCells(cells))
	}
	return trimRows(rows)
}

// trimCells drops empty cells from the end of a row.
func trimCells(cells []string) []string {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	return cells[:n]
}

// trimRows drops empty rows from the end of a sheet.
func trimRows(rows [][]string) [][]string {
	n := len(rows)
	for n > 0 && len(rows[n-1]) == 0 {
		n--
	}
	return rows[:n]
}
