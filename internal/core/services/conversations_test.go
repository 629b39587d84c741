package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

func idTable(t *testing.T, values ...any) *domain.Table {
	t.Helper()
	tbl := domain.NewTable("conversation_id")
	for _, v := range values {
		require.NoError(t, tbl.AppendRow(v))
	}
	return tbl
}

func page(n int, prefix string) []*domain.Record {
	out := make([]*domain.Record, n)
	for i := range out {
		out[i] = domain.RecordFromMap(map[string]any{
			"conversationId": fmt.Sprintf("%s-%d", prefix, i),
			"division":       map[string]any{"id": "d1"},
			"participants":   []any{map[string]any{"purpose": "agent"}},
		})
	}
	return out
}

func TestExtractIDs(t *testing.T) {
	tbl := idTable(t, "a", nil, "b", "", "a", 42.0)

	ids, err := ExtractIDs(tbl, "conversation_id")

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "a", "42"}, ids)
}

func TestExtractIDs_MissingColumn(t *testing.T) {
	_, err := ExtractIDs(idTable(t), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBuildPayloads_CountsAndChunks(t *testing.T) {
	svc := NewConversationService(&mockQuerier{}, nil)
	intervals := []domain.DateInterval{{Start: "2024-01-01", End: "2024-01-02"}, {Start: "2024-02-01", End: "2024-02-02"}}

	tests := []struct {
		n, chunk, want int
	}{
		{0, 10, 0},
		{1, 10, 2},
		{10, 10, 2},
		{11, 10, 4},
		{25, 7, 8},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.n, tt.chunk), func(t *testing.T) {
			ids := make([]string, tt.n)
			for i := range ids {
				ids[i] = fmt.Sprintf("id-%d", i)
			}

			payloads, err := svc.BuildPayloads(ids, intervals, tt.chunk)

			require.NoError(t, err)
			assert.Len(t, payloads, tt.want)
			var firstInterval []string
			for _, p := range payloads {
				assert.LessOrEqual(t, len(p.ConversationIDs()), tt.chunk)
				if p.Interval == intervals[0].Query() {
					firstInterval = append(firstInterval, p.ConversationIDs()...)
				}
			}
			if tt.n > 0 {
				assert.Equal(t, ids, firstInterval)
			}
		})
	}
}

func TestBuildPayloads_IntervalsOuterLoop(t *testing.T) {
	svc := NewConversationService(&mockQuerier{}, nil)
	intervals := []domain.DateInterval{{Start: "2024-01-01", End: "2024-01-02"}, {Start: "2024-02-01", End: "2024-02-02"}}

	payloads, err := svc.BuildPayloads([]string{"a", "b", "c"}, intervals, 2)

	require.NoError(t, err)
	require.Len(t, payloads, 4)
	assert.Equal(t, "2024-01-01T05:00:00.000Z/2024-01-02T05:00:00.000Z", payloads[0].Interval)
	assert.Equal(t, payloads[0].Interval, payloads[1].Interval)
	assert.Equal(t, []string{"c"}, payloads[1].ConversationIDs())
	assert.Equal(t, "2024-02-01T05:00:00.000Z/2024-02-02T05:00:00.000Z", payloads[2].Interval)
}

func TestBuildPayloads_Shape(t *testing.T) {
	svc := NewConversationService(&mockQuerier{}, nil)

	payloads, err := svc.BuildPayloads([]string{"a"}, []domain.DateInterval{{Start: "2024-01-01", End: "2024-01-02"}}, 10)

	require.NoError(t, err)
	p := payloads[0]
	assert.Equal(t, "desc", p.Order)
	assert.Equal(t, "conversationStart", p.OrderBy)
	assert.Equal(t, domain.Paging{PageSize: 50, PageNumber: 1}, p.Paging)
	require.Len(t, p.SegmentFilters, 2)
	assert.Equal(t, "mediaType", p.SegmentFilters[0].Predicates[0].Dimension)
	assert.Len(t, p.SegmentFilters[1].Predicates, 2)
	assert.NotNil(t, p.EvaluationFilters)
	assert.NotNil(t, p.SurveyFilters)
}

func TestBuildPayloads_RejectsChunkSize(t *testing.T) {
	svc := NewConversationService(&mockQuerier{}, nil)
	for _, size := range []int{0, -1} {
		_, err := svc.BuildPayloads([]string{"a"}, nil, size)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestPlanQueries(t *testing.T) {
	svc := NewConversationService(nil, nil)
	ids := make([]any, 0, 24)
	for i := range 21 {
		ids = append(ids, fmt.Sprintf("id-%d", i))
	}
	ids = append(ids, nil, "", "id-0")

	payloads, err := svc.PlanQueries(idTable(t, ids...), "conversation_id", []domain.DateInterval{
		{Start: "2024-01-01", End: "2024-01-02"},
		{Start: "2024-02-01", End: "2024-02-02"},
	})

	require.NoError(t, err)
	require.Len(t, payloads, 6)
	assert.Len(t, payloads[0].ConversationIDs(), domain.DefaultChunkSize)
	assert.Equal(t, []string{"id-20", "id-0"}, payloads[2].ConversationIDs())
	assert.Equal(t, payloads[2].ConversationIDs(), payloads[5].ConversationIDs())

	_, err = svc.PlanQueries(idTable(t, "a"), "missing", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFetchAllPages_StopsOnShortPage(t *testing.T) {
	q := &mockQuerier{pages: map[int][]*domain.Record{
		1: page(50, "p1"),
		2: page(3, "p2"),
		3: page(50, "never"),
	}}
	svc := NewConversationService(q, nil)
	payloads, err := svc.BuildPayloads([]string{"x"}, []domain.DateInterval{{Start: "2024-01-01", End: "2024-01-02"}}, 10)
	require.NoError(t, err)

	tbl, err := svc.FetchAllPages(context.Background(), payloads[0])

	require.NoError(t, err)
	assert.Equal(t, 53, tbl.Len())
	assert.Len(t, q.queries, 2)
	assert.Equal(t, 2, q.queries[1].Paging.PageNumber)
	assert.True(t, tbl.HasColumn("division.id"))
	assert.Equal(t, `[{"purpose":"agent"}]`, tbl.Value(0, "participants"))
}

func TestFetchAllPages_StopsOnEmptyPage(t *testing.T) {
	q := &mockQuerier{pages: map[int][]*domain.Record{1: page(50, "p1")}}
	svc := NewConversationService(q, nil)

	tbl, err := svc.FetchAllPages(context.Background(), domain.ConversationQuery{Paging: domain.Paging{PageSize: 50, PageNumber: 1}})

	require.NoError(t, err)
	assert.Equal(t, 50, tbl.Len())
	assert.Len(t, q.queries, 2)
}

func TestFetchDetails_ConcatenatesNonEmpty(t *testing.T) {
	q := &mockQuerier{pages: map[int][]*domain.Record{1: page(2, "c")}}
	svc := NewConversationService(q, nil)
	ids := make([]any, 12)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%d", i)
	}

	tbl, err := svc.FetchDetails(context.Background(), idTable(t, ids...), "conversation_id",
		[]domain.DateInterval{{Start: "2024-01-01", End: "2024-01-02"}})

	require.NoError(t, err)
	assert.Len(t, q.queries, 2)
	assert.Equal(t, 4, tbl.Len())
}

func TestFetchDetails_NoIDsMeansNoRequests(t *testing.T) {
	q := &mockQuerier{}
	svc := NewConversationService(q, nil)

	tbl, err := svc.FetchDetails(context.Background(), idTable(t, nil, ""), "conversation_id",
		[]domain.DateInterval{{Start: "2024-01-01", End: "2024-01-02"}})

	require.NoError(t, err)
	assert.Empty(t, q.queries)
	assert.Zero(t, tbl.Width())
	assert.Zero(t, tbl.Len())
}

func TestFetchDetails_ErrorAborts(t *testing.T) {
	svc := NewConversationService(&mockQuerier{err: domain.ErrTransport}, nil)

	tbl, err := svc.FetchDetails(context.Background(), idTable(t, "a"), "conversation_id",
		[]domain.DateInterval{{Start: "2024-01-01", End: "2024-01-02"}})

	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Nil(t, tbl)
}

func TestUsers(t *testing.T) {
	svc := NewConversationService(nil, &mockUsers{users: records(t,
		`{"id":"u1","name":"Ada","division":{"name":"Ops"}}`,
		`{"id":"u2","email":"b@example.com"}`,
	)})

	tbl, err := svc.Users(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"id", "name", "division.name", "email"}, tbl.Columns())
	assert.Equal(t, "Ops", tbl.Value(0, "division.name"))
	assert.Nil(t, tbl.Value(0, "email"))
	assert.Equal(t, "b@example.com", tbl.Value(1, "email"))
}

func TestUsers_NoDirectory(t *testing.T) {
	_, err := NewConversationService(&mockQuerier{}, nil).Users(context.Background())
	assert.ErrorIs(t, err, domain.ErrValidation)
}
