package record

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

func decode(t *testing.T, obj string) *domain.Record {
	t.Helper()
	rec := &domain.Record{}
	require.NoError(t, json.Unmarshal([]byte(obj), rec))
	return rec
}

func TestFlatten_RelationshipObject(t *testing.T) {
	in := decode(t, `{
		"attributes": {"type": "Account", "url": "/services/data/v60.0/sobjects/Account/001"},
		"Id": "001",
		"Owner": {"attributes": {"type": "User"}, "Id": "005", "Name": "X"}
	}`)

	got := Flatten(in)

	assert.Equal(t, []string{"Id", "Owner__Id", "Owner__Name"}, got.Keys())
	assert.Equal(t, "005", got.Value("Owner__Id"))
	assert.Equal(t, "X", got.Value("Owner__Name"))
}

func TestFlatten_KeepsFieldOrder(t *testing.T) {
	in := decode(t, `{"attributes":{},"Zip":"1","Owner":{"attributes":{},"Name":"n","Alias":"a"},"Amount":2}`)

	got := Flatten(in)

	assert.Equal(t, []string{"Zip", "Owner__Name", "Owner__Alias", "Amount"}, got.Keys())
}

func TestFlatten_NestedWithoutAttributesPassesThrough(t *testing.T) {
	in := decode(t, `{"Id":"001","BillingAddress":{"city":"Boston"},"Count":3}`)

	got := Flatten(in)

	address, ok := got.Value("BillingAddress").(*domain.Record)
	require.True(t, ok)
	assert.Equal(t, "Boston", address.Value("city"))
	assert.Equal(t, 3.0, got.Value("Count"))
	assert.Equal(t, 3, got.Len())
}

func TestFlatten_TwoLevels(t *testing.T) {
	in := decode(t, `{
		"attributes": {},
		"Contact": {"attributes": {}, "Account": {"attributes": {}, "Name": "Acme"}}
	}`)

	got := Flatten(in)

	assert.Equal(t, []string{"Contact__Account__Name"}, got.Keys())
	assert.Equal(t, "Acme", got.Value("Contact__Account__Name"))
}

func TestFlatten_NullRelationship(t *testing.T) {
	got := Flatten(decode(t, `{"Id":"1","Owner":null}`))

	assert.Equal(t, []string{"Id", "Owner"}, got.Keys())
	v, ok := got.Get("Owner")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestNormalize(t *testing.T) {
	in := decode(t, `{
		"conversationId": "c1",
		"participants": [{"purpose": "agent"}],
		"division": {"id": "d1", "owner": {"name": "n"}},
		"empty": {}
	}`)

	got := Normalize(in)

	assert.Equal(t, []string{"conversationId", "participants", "division.id", "division.owner.name", "empty"}, got.Keys())
	assert.Equal(t, "c1", got.Value("conversationId"))
	assert.Equal(t, "d1", got.Value("division.id"))
	assert.Equal(t, "n", got.Value("division.owner.name"))
}

func TestScalar(t *testing.T) {
	assert.Equal(t, `[{"purpose":"agent"}]`, Scalar([]any{map[string]any{"purpose": "agent"}}))
	assert.Equal(t, `{"a":1}`, Scalar(map[string]any{"a": 1.0}))
	assert.Equal(t, `{"z":1,"a":[true]}`, Scalar(decode(t, `{"z":1,"a":[true]}`)))
	assert.Equal(t, "{}", Scalar(domain.NewRecord()))
	assert.Equal(t, "x", Scalar("x"))
	assert.Nil(t, Scalar(nil))
}

func TestRow(t *testing.T) {
	rec := decode(t, `{"b":"2023-06-01T12:00:00Z","a":[1]}`)

	row := Row(rec, func(v any) any { return Scalar(ToEastern(v)) })

	assert.Equal(t, map[string]any{"b": "2023-06-01 08:00:00 EDT", "a": "[1]"}, row)
}

func TestToEastern(t *testing.T) {
	got, ok := ToEastern("2023-06-01T12:00:00Z").(string)
	require.True(t, ok)

	assert.Equal(t, "2023-06-01 08:00:00 EDT", got)
}

func TestToEastern_Winter(t *testing.T) {
	assert.Equal(t, "2023-01-15 07:30:00 EST", ToEastern("2023-01-15T12:30:00.000+0000"))
}

func TestToEastern_NoZoneAssumesUTC(t *testing.T) {
	assert.Equal(t, "2023-06-01 08:00:00 EDT", ToEastern("2023-06-01T12:00:00"))
}

func TestToEastern_PassThrough(t *testing.T) {
	tests := []any{
		"2023-06-01",
		"2023-06-01 08:00:00 EDT",
		"not a date",
		"2023-13-45Tgarbage",
		42.0,
		nil,
		true,
	}
	for _, in := range tests {
		assert.Equal(t, in, ToEastern(in))
	}
}

func TestToEastern_IdempotentOnOutput(t *testing.T) {
	once := ToEastern("2023-06-01T12:00:00Z")
	assert.Equal(t, once, ToEastern(once))
	assert.True(t, strings.HasPrefix(once.(string), "2023-06-01"))
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Account Owner: Full Name", "account_owner_full_name"},
		{"Owner__Name", "owner__name"},
		{"  Amount (USD) ", "amount_usd"},
		{"Stage.Name", "stage_name"},
		{"???", "column"},
		{"CreatedDate", "created_date"},
		{"HTTPStatusCode", "http_status_code"},
		{"CASE_NUMBER", "case_number"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanName(tt.in), tt.in)
	}
}

func TestCleanNames_DeduplicatesCollisions(t *testing.T) {
	tbl := domain.NewTable("Name", "name", "NAME ", "name_2")
	require.NoError(t, tbl.AppendRow("a", "b", "c", "d"))

	require.NoError(t, CleanNames(tbl))

	assert.Equal(t, []string{"name", "name_2", "name_3", "name_2_2"}, tbl.Columns())
	assert.Equal(t, "c", tbl.Value(0, "name_3"))
}

func TestFormatEastern(t *testing.T) {
	assert.Equal(t, "2023-06-01 08:00:00 EDT", FormatEastern("2023-06-01T12:00:00Z"))
	assert.Equal(t, "2023-12-31 19:00:00 EST", FormatEastern("2024-01-01"))
	assert.Equal(t, "soon", FormatEastern("soon"))
}
