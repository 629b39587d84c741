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

// Ensure ConversationService implements the interface.
var _ driving.ConversationService = (*ConversationService)(nil)

// ConversationService batches conversation detail queries by ID and interval.
type ConversationService struct {
	querier driven.ConversationQuerier
	users   driven.UserDirectory
}

// NewConversationService creates a conversation service.
// users may be nil when only detail queries are needed.
func NewConversationService(querier driven.ConversationQuerier, users driven.UserDirectory) *ConversationService {
	return &ConversationService{querier: querier, users: users}
}

// ExtractIDs returns the non-empty values of a column as text,
// in row order and with duplicates kept.
func ExtractIDs(t *domain.Table, column string) ([]string, error) {
	values, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: column %q", domain.ErrNotFound, column)
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		s := domain.FormatValue(v)
		if s == "" {
			continue
		}
		ids = append(ids, s)
	}
	return ids, nil
}

// BuildPayloads builds one query per interval and chunk of at most
// chunkSize IDs. Intervals are the outer loop.
func (s *ConversationService) BuildPayloads(
	ids []string, intervals []domain.DateInterval, chunkSize int,
) ([]domain.ConversationQuery, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrValidation, chunkSize)
	}

	var chunks [][]string
	for start := 0; start < len(ids); start += chunkSize {
		end := min(start+chunkSize, len(ids))
		chunks = append(chunks, ids[start:end])
	}

	payloads := make([]domain.ConversationQuery, 0, len(intervals)*len(chunks))
	for _, interval := range intervals {
		for _, chunk := range chunks {
			payloads = append(payloads, newConversationQuery(interval, chunk))
		}
	}
	return payloads, nil
}

func newConversationQuery(interval domain.DateInterval, ids []string) domain.ConversationQuery {
	predicates := make([]domain.Predicate, len(ids))
	for i, id := range ids {
		predicates[i] = domain.Predicate{Dimension: "conversationId", Value: id}
	}
	return domain.ConversationQuery{
		Order:    "desc",
		OrderBy:  "conversationStart",
		Paging:   domain.Paging{PageSize: domain.DefaultPageSize, PageNumber: 1},
		Interval: interval.Query(),
		SegmentFilters: []domain.FilterClause{
			{
				Type:       "or",
				Predicates: []domain.Predicate{{Dimension: "mediaType", Value: "voice"}},
			},
			{
				Type: "or",
				Predicates: []domain.Predicate{
					{Dimension: "direction", Value: "inbound"},
					{Dimension: "direction", Value: "outbound"},
				},
			},
		},
		ConversationFilters: []domain.FilterClause{{Type: "or", Predicates: predicates}},
		EvaluationFilters:   []domain.FilterClause{},
		SurveyFilters:       []domain.FilterClause{},
	}
}

// PlanQueries extracts the IDs in column and builds one query per
// interval and chunk of DefaultChunkSize IDs.
func (s *ConversationService) PlanQueries(
	table *domain.Table, column string, intervals []domain.DateInterval,
) ([]domain.ConversationQuery, error) {
	ids, err := ExtractIDs(table, column)
	if err != nil {
		return nil, err
	}
	logger.Debug("conversations: %d IDs from column %q", len(ids), column)
	return s.BuildPayloads(ids, intervals, domain.DefaultChunkSize)
}

// FetchAllPages runs query from its starting page until a page comes back
// empty or shorter than the page size.
func (s *ConversationService) FetchAllPages(
	ctx context.Context, query domain.ConversationQuery,
) (*domain.Table, error) {
	out := domain.NewTable()
	for {
		convs, err := s.querier.QueryConversations(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(convs) == 0 {
			logger.Debug("conversations: page %d empty", query.Paging.PageNumber)
			return out, nil
		}
		appendNormalized(out, convs)
		if len(convs) < query.Paging.PageSize {
			return out, nil
		}
		query.Paging.PageNumber++
	}
}

// FetchDetails queries every interval for the IDs found in column
// and stacks the non-empty results in query order.
func (s *ConversationService) FetchDetails(
	ctx context.Context, table *domain.Table, column string, intervals []domain.DateInterval,
) (*domain.Table, error) {
	payloads, err := s.PlanQueries(table, column, intervals)
	if err != nil {
		return nil, err
	}
	logger.Section("Conversation details")
	logger.Info("%d intervals, %d queries", len(intervals), len(payloads))

	var parts []*domain.Table
	for i, payload := range payloads {
		part, err := s.FetchAllPages(ctx, payload)
		if err != nil {
			return nil, fmt.Errorf("query %d of %d: %w", i+1, len(payloads), err)
		}
		if !part.IsEmpty() {
			parts = append(parts, part)
		}
	}
	result := domain.Concat(parts...)
	logger.Status("Fetched %d conversation rows.", result.Len())
	return result, nil
}

// Users returns every contact center user as a flattened table.
func (s *ConversationService) Users(ctx context.Context) (*domain.Table, error) {
	if s.users == nil {
		return nil, fmt.Errorf("%w: no user directory configured", domain.ErrValidation)
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := domain.NewTable()
	appendNormalized(out, users)
	logger.Status("Fetched %d users.", out.Len())
	return out, nil
}

// appendNormalized flattens each record into "."-joined columns,
// in the key order of the record.
func appendNormalized(t *domain.Table, records []*domain.Record) {
	for _, rec := range records {
		if rec == nil {
			continue
		}
		flat := record.Normalize(rec)
		t.AppendOrderedRecord(flat.Keys(), record.Row(flat, record.Scalar))
	}
}
