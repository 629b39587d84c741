package driving

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// RecordService turns CRM queries and reports into tables.
type RecordService interface {
	// Query runs a SOQL statement.
	Query(ctx context.Context, soql string) (*domain.Table, error)

	// Report runs a saved report and returns its detail rows.
	Report(ctx context.Context, reportID string) (*domain.Table, error)
}
