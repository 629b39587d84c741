package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultPageSize is the page size of every conversation details query.
const DefaultPageSize = 50

// DefaultChunkSize is the number of conversation IDs per query.
const DefaultChunkSize = 10

// ConversationQuery is the request body of the Genesys conversation
// details query. Only Paging.PageNumber changes between pages.
type ConversationQuery struct {
	Order               string         `json:"order"`
	OrderBy             string         `json:"orderBy"`
	Paging              Paging         `json:"paging"`
	Interval            string         `json:"interval"`
	SegmentFilters      []FilterClause `json:"segmentFilters"`
	ConversationFilters []FilterClause `json:"conversationFilters"`
	EvaluationFilters   []FilterClause `json:"evaluationFilters"`
	SurveyFilters       []FilterClause `json:"surveyFilters"`
}

// Paging selects one page of query results.
type Paging struct {
	PageSize   int `json:"pageSize"`
	PageNumber int `json:"pageNumber"`
}

// FilterClause combines predicates with a boolean operator.
type FilterClause struct {
	Type       string      `json:"type"`
	Predicates []Predicate `json:"predicates"`
}

// Predicate matches one dimension against a value.
type Predicate struct {
	Dimension string `json:"dimension"`
	Value     string `json:"value"`
}

// DateInterval is a pair of calendar dates formatted YYYY-MM-DD.
type DateInterval struct {
	Start string
	End   string
}

// Query renders the interval in the form the analytics API expects.
// Both bounds are pinned to 05:00 UTC.
func (d DateInterval) Query() string {
	return d.Start + "T05:00:00.000Z/" + d.End + "T05:00:00.000Z"
}

// ParseInterval parses a START/END pair of YYYY-MM-DD dates. END must
// fall after START.
func ParseInterval(raw string) (DateInterval, error) {
	start, end, ok := strings.Cut(raw, "/")
	if !ok {
		return DateInterval{}, fmt.Errorf("%w: interval %q must be START/END", ErrValidation, raw)
	}
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return DateInterval{}, fmt.Errorf("%w: interval start %q is not YYYY-MM-DD", ErrValidation, start)
	}
	e, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return DateInterval{}, fmt.Errorf("%w: interval end %q is not YYYY-MM-DD", ErrValidation, end)
	}
	if !e.After(s) {
		return DateInterval{}, fmt.Errorf("%w: interval %q ends before it starts", ErrValidation, raw)
	}
	return DateInterval{Start: start, End: end}, nil
}

// ConversationIDs returns the conversation IDs targeted by the query.
func (q ConversationQuery) ConversationIDs() []string {
	var ids []string
	for _, f := range q.ConversationFilters {
		for _, p := range f.Predicates {
			if p.Dimension == "conversationId" {
				ids = append(ids, p.Value)
			}
		}
	}
	return ids
}
