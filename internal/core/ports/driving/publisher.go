package driving

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// PublisherService writes tables into spreadsheet workbooks.
type PublisherService interface {
	// Publish writes a table into a workbook sheet, creating either as needed.
	Publish(ctx context.Context, req domain.PublishRequest) domain.PublishResult

	// ReadSheet returns a sheet as a table with the first row as header.
	ReadSheet(ctx context.Context, workbook, sheet string) (*domain.Table, error)
}
