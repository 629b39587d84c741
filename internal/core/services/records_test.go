package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

func TestRecordService_Query(t *testing.T) {
	src := &mockRecordSource{records: records(t,
		`{"attributes":{"type":"Case"},"Id":"500","Owner":{"attributes":{"type":"User"},"Name":"Ada"},"CreatedDate":"2023-06-01T12:00:00.000+0000"}`,
		`{"attributes":{"type":"Case"},"Id":"501","Owner":null,"CreatedDate":null,"Status":"New"}`,
	)}
	svc := NewRecordService(src)

	tbl, err := svc.Query(context.Background(), "SELECT Id FROM Case")

	require.NoError(t, err)
	assert.Equal(t, []string{"id", "owner__name", "created_date", "owner", "status"}, tbl.Columns())
	assert.Equal(t, "2023-06-01 08:00:00 EDT", tbl.Value(0, "created_date"))
	assert.Equal(t, "Ada", tbl.Value(0, "owner__name"))
	assert.Nil(t, tbl.Value(1, "owner__name"))
	assert.Equal(t, "New", tbl.Value(1, "status"))
	for _, c := range tbl.Columns() {
		assert.NotContains(t, c, "attributes")
	}
}

func TestRecordService_QueryKeepsFieldOrder(t *testing.T) {
	src := &mockRecordSource{records: records(t,
		`{"attributes":{"type":"Lead"},"Zip":"02110","Amount":5,"Company":"Acme"}`,
	)}

	tbl, err := NewRecordService(src).Query(context.Background(), "SELECT Zip, Amount, Company FROM Lead")

	require.NoError(t, err)
	assert.Equal(t, []string{"zip", "amount", "company"}, tbl.Columns())
	assert.Equal(t, 5.0, tbl.Value(0, "amount"))
}

func TestRecordService_QueryError(t *testing.T) {
	_, err := NewRecordService(&mockRecordSource{err: domain.ErrAuthRequired}).Query(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestRecordService_Report(t *testing.T) {
	src := &mockRecordSource{report: &domain.Report{
		Columns: []domain.ReportColumn{
			{Name: "CASE_NUMBER", Label: "Case Number", DataType: "string"},
			{Name: "CREATED_DATE", Label: "Created Date", DataType: "datetime"},
			{Name: "OWNER", Label: "Owner", DataType: "string"},
		},
		Rows: [][]domain.ReportCell{
			{{Value: "0001", Label: "0001"}, {Value: "2023-06-01T12:00:00Z", Label: "6/1/2023"}, {Value: "005", Label: "Ada"}},
			{{Value: "0002", Label: "-"}, {Value: nil, Label: "-"}, {Value: "005x", Label: ""}},
		},
	}}

	tbl, err := NewRecordService(src).Report(context.Background(), "00O1")

	require.NoError(t, err)
	assert.Equal(t, []string{"case_number", "created_date", "owner"}, tbl.Columns())
	assert.Equal(t, "2023-06-01 08:00:00 EDT", tbl.Value(0, "created_date"))
	assert.Equal(t, "Ada", tbl.Value(0, "owner"))
	assert.Equal(t, "0002", tbl.Value(1, "case_number"))
	assert.Nil(t, tbl.Value(1, "created_date"))
	assert.Equal(t, "005x", tbl.Value(1, "owner"))
}
