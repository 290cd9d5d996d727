package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aihub/internal/domain"
	"aihub/internal/workspace"
)

func sampleResult() *workspace.Result {
	return &workspace.Result{
		Columns: []string{"name", "age"},
		Rows: [][]interface{}{
			{"alice", "34"},
			{"bob", nil},
		},
		RowCount: 2,
	}
}

func TestEncode_JSON(t *testing.T) {
	t.Parallel()

	payload, err := Encode(sampleResult(), domain.FormatJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"alice","age":"34"},{"name":"bob","age":null}]`, payload)
}

func TestEncode_Table(t *testing.T) {
	t.Parallel()

	payload, err := Encode(sampleResult(), domain.FormatTable)
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["name","age"],"rows":[["alice","34"],["bob",null]]}`, payload)
}

func TestEncode_CSV(t *testing.T) {
	t.Parallel()

	payload, err := Encode(sampleResult(), domain.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "name,age\n\"alice\",\"34\"\n\"bob\",\"\"", payload)
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := Encode(sampleResult(), domain.OutputFormat("xml"))
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestDelimited_EmptyRowsYieldEmptyString(t *testing.T) {
	t.Parallel()

	res := &workspace.Result{Columns: []string{"a"}}
	assert.Equal(t, "", Delimited(res))
}

func TestDelimited_EmbeddedQuotesAreDoubled(t *testing.T) {
	t.Parallel()

	res := &workspace.Result{
		Columns:  []string{"quote"},
		Rows:     [][]interface{}{{`say "hi"`}},
		RowCount: 1,
	}
	assert.Equal(t, "quote\n\"say \"\"hi\"\"\"", Delimited(res))
}

func TestTabular_NilRowsBecomeEmptySlice(t *testing.T) {
	t.Parallel()

	table := Tabular(&workspace.Result{Columns: []string{"a"}})
	assert.NotNil(t, table.Rows)
	assert.Empty(t, table.Rows)
}

func TestStructured_EmptyResult(t *testing.T) {
	t.Parallel()

	out := Structured(&workspace.Result{Columns: []string{"a"}})
	assert.Empty(t, out)
}
