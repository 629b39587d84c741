package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
	"github.com/custodia-labs/tabula/internal/normalisers/record"
)

// Ensure RecordService implements the interface.
var _ driving.RecordService = (*RecordService)(nil)

// emptyLabel is the report placeholder for a cell without a display value.
const emptyLabel = "-"

// RecordService reshapes CRM records and report rows into tables.
type RecordService struct {
	source driven.RecordSource
}

// NewRecordService creates a record service.
func NewRecordService(source driven.RecordSource) *RecordService {
	return &RecordService{source: source}
}

// Query runs a SOQL statement. Relationship objects are flattened,
// timestamps rendered in Eastern time and column names cleaned.
// Columns follow the field order of the records.
func (s *RecordService) Query(ctx context.Context, soql string) (*domain.Table, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: no record source configured", domain.ErrValidation)
	}
	records, err := s.source.Query(ctx, soql)
	if err != nil {
		return nil, err
	}

	out := domain.NewTable()
	for _, rec := range records {
		if rec == nil {
			continue
		}
		flat := record.Flatten(rec)
		out.AppendOrderedRecord(flat.Keys(), record.Row(flat, easternScalar))
	}
	if err := record.CleanNames(out); err != nil {
		return nil, err
	}
	logger.Status("Query returned %d records.", out.Len())
	return out, nil
}

// Report runs a saved report. Date columns are rendered in Eastern time;
// other cells take their display label unless it is blank or "-".
func (s *RecordService) Report(ctx context.Context, reportID string) (*domain.Table, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: no record source configured", domain.ErrValidation)
	}
	rep, err := s.source.Report(ctx, reportID)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(rep.Columns))
	for i, c := range rep.Columns {
		names[i] = c.Name
	}
	out := domain.NewTable(names...)
	for _, cells := range rep.Rows {
		row := make([]any, len(rep.Columns))
		for i, cell := range cells {
			row[i] = reportValue(rep.Columns[i], cell)
		}
		if err := out.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	if err := record.CleanNames(out); err != nil {
		return nil, err
	}
	logger.Status("Report %s returned %d rows.", reportID, out.Len())
	return out, nil
}

func easternScalar(v any) any {
	return record.Scalar(record.ToEastern(v))
}

func reportValue(col domain.ReportColumn, cell domain.ReportCell) any {
	if col.IsTemporal() {
		s := domain.FormatValue(cell.Value)
		if s == "" {
			return nil
		}
		return record.FormatEastern(s)
	}
	if cell.Label != "" && cell.Label != emptyLabel {
		return cell.Label
	}
	return record.Scalar(cell.Value)
}
