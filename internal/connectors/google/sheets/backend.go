// Package sheets implements the spreadsheet port over the Sheets and Drive APIs.
// Drive resolves workbooks by title and shares them; Sheets edits their content.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/tabula/internal/connectors/google"
	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.SpreadsheetBackend = (*Backend)(nil)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// Backend manages workbooks owned by or shared with the credential.
type Backend struct {
	sheets      *sheets.Service
	drive       *drive.Service
	rateLimiter *google.RateLimiter
}

// New creates a backend from authenticated Sheets and Drive services.
func New(sheetsSvc *sheets.Service, driveSvc *drive.Service) *Backend {
	return &Backend{
		sheets:      sheetsSvc,
		drive:       driveSvc,
		rateLimiter: google.NewRateLimiter(google.ServiceSheets),
	}
}

func (b *Backend) call(ctx context.Context, what string, fn func() error) error {
	if err := b.rateLimiter.Wait(ctx); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", what, google.WrapError(b.rateLimiter.Observe(err)))
	}
	return nil
}

// FindWorkbook returns the first non-trashed spreadsheet with the exact title.
func (b *Backend) FindWorkbook(ctx context.Context, title string) (domain.Workbook, bool, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(title), spreadsheetMimeType)

	var list *drive.FileList
	err := b.call(ctx, "find workbook", func() error {
		var err error
		list, err = b.drive.Files.List().Q(q).
			Fields("files(id, name)").
			PageSize(1).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return domain.Workbook{}, false, err
	}
	if len(list.Files) == 0 {
		return domain.Workbook{}, false, nil
	}
	return domain.Workbook{ID: list.Files[0].Id, Title: list.Files[0].Name}, true, nil
}

// escapeQuery escapes a literal for a Drive query string.
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// CreateWorkbook creates a spreadsheet with the default first sheet.
func (b *Backend) CreateWorkbook(ctx context.Context, title string) (domain.Workbook, error) {
	var created *sheets.Spreadsheet
	err := b.call(ctx, "create workbook", func() error {
		var err error
		created, err = b.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{Title: title},
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return domain.Workbook{}, err
	}
	return domain.Workbook{ID: created.SpreadsheetId, Title: title}, nil
}

// Share grants a user writer access and notifies them by email.
func (b *Backend) Share(ctx context.Context, wb domain.Workbook, email string) error {
	return b.call(ctx, "share workbook with "+email, func() error {
		_, err := b.drive.Permissions.Create(wb.ID, &drive.Permission{
			Type:         "user",
			Role:         "writer",
			EmailAddress: email,
		}).SendNotificationEmail(true).SupportsAllDrives(true).Context(ctx).Do()
		return err
	})
}

func (b *Backend) properties(ctx context.Context, wb domain.Workbook) ([]*sheets.SheetProperties, error) {
	var ss *sheets.Spreadsheet
	err := b.call(ctx, "get workbook", func() error {
		var err error
		ss, err = b.sheets.Spreadsheets.Get(wb.ID).Fields("sheets.properties").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	props := make([]*sheets.SheetProperties, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			props = append(props, s.Properties)
		}
	}
	return props, nil
}

// ListSheets returns sheet titles in tab order.
func (b *Backend) ListSheets(ctx context.Context, wb domain.Workbook) ([]string, error) {
	props, err := b.properties(ctx, wb)
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(props))
	for i, p := range props {
		titles[i] = p.Title
	}
	return titles, nil
}

func (b *Backend) sheetID(ctx context.Context, wb domain.Workbook, title string) (int64, error) {
	props, err := b.properties(ctx, wb)
	if err != nil {
		return 0, err
	}
	for _, p := range props {
		if p.Title == title {
			return p.SheetId, nil
		}
	}
	return 0, fmt.Errorf("%w: sheet %q in workbook %q", domain.ErrNotFound, title, wb.Title)
}

func (b *Backend) batchUpdate(ctx context.Context, wb domain.Workbook, what string, reqs ...*sheets.Request) error {
	return b.call(ctx, what, func() error {
		_, err := b.sheets.Spreadsheets.BatchUpdate(wb.ID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: reqs,
		}).Context(ctx).Do()
		return err
	})
}

// AddSheet appends an empty sheet.
func (b *Backend) AddSheet(ctx context.Context, wb domain.Workbook, sheet string) error {
	return b.batchUpdate(ctx, wb, "add sheet "+sheet, &sheets.Request{
		AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: sheet}},
	})
}

// ClearSheet removes every value from a sheet, keeping its formatting.
func (b *Backend) ClearSheet(ctx context.Context, wb domain.Workbook, sheet string) error {
	return b.call(ctx, "clear sheet "+sheet, func() error {
		_, err := b.sheets.Spreadsheets.Values.Clear(wb.ID, a1(sheet), &sheets.ClearValuesRequest{}).Context(ctx).Do()
		return err
	})
}

// DeleteSheet removes a sheet by title.
func (b *Backend) DeleteSheet(ctx context.Context, wb domain.Workbook, sheet string) error {
	id, err := b.sheetID(ctx, wb, sheet)
	if err != nil {
		return err
	}
	return b.batchUpdate(ctx, wb, "delete sheet "+sheet, &sheets.Request{
		DeleteSheet: &sheets.DeleteSheetRequest{SheetId: id, ForceSendFields: []string{"SheetId"}},
	})
}

// WriteValues writes rows from A1 without parsing them as formulas.
func (b *Backend) WriteValues(ctx context.Context, wb domain.Workbook, sheet string, rows [][]any) error {
	return b.call(ctx, "write sheet "+sheet, func() error {
		_, err := b.sheets.Spreadsheets.Values.Update(wb.ID, a1(sheet)+"!A1", &sheets.ValueRange{
			Values: rows,
		}).ValueInputOption("RAW").Context(ctx).Do()
		return err
	})
}

// FormatHeader freezes the first row and sets a basic filter over the columns.
func (b *Backend) FormatHeader(ctx context.Context, wb domain.Workbook, sheet string, columns int) error {
	id, err := b.sheetID(ctx, wb, sheet)
	if err != nil {
		return err
	}
	return b.batchUpdate(ctx, wb, "format header of "+sheet,
		&sheets.Request{UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId:         id,
				GridProperties:  &sheets.GridProperties{FrozenRowCount: 1},
				ForceSendFields: []string{"SheetId"},
			},
			Fields: "gridProperties.frozenRowCount",
		}},
		&sheets.Request{SetBasicFilter: &sheets.SetBasicFilterRequest{
			Filter: &sheets.BasicFilter{Range: &sheets.GridRange{
				SheetId:          id,
				StartRowIndex:    0,
				StartColumnIndex: 0,
				EndColumnIndex:   int64(columns),
				ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
			}},
		}},
	)
}

// AutoResize fits the first columns of a sheet to their content.
func (b *Backend) AutoResize(ctx context.Context, wb domain.Workbook, sheet string, columns int) error {
	id, err := b.sheetID(ctx, wb, sheet)
	if err != nil {
		return err
	}
	return b.batchUpdate(ctx, wb, "resize columns of "+sheet, &sheets.Request{
		AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
			Dimensions: &sheets.DimensionRange{
				SheetId:         id,
				Dimension:       "COLUMNS",
				StartIndex:      0,
				EndIndex:        int64(columns),
				ForceSendFields: []string{"SheetId", "StartIndex"},
			},
		},
	})
}

// ReadValues returns the populated rows of a sheet as formatted strings.
func (b *Backend) ReadValues(ctx context.Context, wb domain.Workbook, sheet string) ([][]string, error) {
	var vr *sheets.ValueRange
	err := b.call(ctx, "read sheet "+sheet, func() error {
		var err error
		vr, err = b.sheets.Spreadsheets.Values.Get(wb.ID, a1(sheet)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(vr.Values))
	for i, row := range vr.Values {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			rows[i][j] = fmt.Sprint(v)
		}
	}
	return rows, nil
}

// a1 quotes a sheet title for use in an A1 range.
func a1(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}
