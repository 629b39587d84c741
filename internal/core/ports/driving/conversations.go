package driving

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// ConversationService runs batched conversation detail queries.
type ConversationService interface {
	// BuildPayloads builds one query per interval and ID chunk.
	// Intervals are the outer loop, chunks the inner.
	BuildPayloads(ids []string, intervals []domain.DateInterval, chunkSize int) ([]domain.ConversationQuery, error)

	// PlanQueries extracts the IDs in column and builds the queries
	// FetchDetails would run, without contacting the platform.
	PlanQueries(table *domain.Table, column string, intervals []domain.DateInterval) ([]domain.ConversationQuery, error)

	// FetchAllPages runs a query page by page and returns the flattened rows.
	FetchAllPages(ctx context.Context, query domain.ConversationQuery) (*domain.Table, error)

	// FetchDetails looks up the conversations whose IDs appear in column.
	FetchDetails(ctx context.Context, table *domain.Table, column string, intervals []domain.DateInterval) (*domain.Table, error)

	// Users returns every contact center user as a table.
	Users(ctx context.Context) (*domain.Table, error)
}
