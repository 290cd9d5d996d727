package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBind_PositionalOrder(t *testing.T) {
	t.Parallel()

	bindings := Bind([]string{"id-b", "id-a", "id-c"})
	assert.Equal(t, []Binding{
		{DatasetID: "id-b", Relation: "dataset_1"},
		{DatasetID: "id-a", Relation: "dataset_2"},
		{DatasetID: "id-c", Relation: "dataset_3"},
	}, bindings)
}

func TestRewrite(t *testing.T) {
	t.Parallel()

	bindings := Bind([]string{"0198c1a2-aaaa-7000-8000-000000000001", "ds2"})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare id",
			in:   "SELECT * FROM 0198c1a2-aaaa-7000-8000-000000000001",
			want: "SELECT * FROM dataset_1",
		},
		{
			name: "join across two datasets",
			in:   "SELECT * FROM 0198c1a2-aaaa-7000-8000-000000000001 a JOIN ds2 b ON a.id = b.id",
			want: "SELECT * FROM dataset_1 a JOIN ds2 b ON a.id = b.id",
		},
		{
			name: "id inside a string literal is untouched",
			in:   "SELECT 'ds2' FROM ds2",
			want: "SELECT 'ds2' FROM dataset_2",
		},
		{
			name: "escaped quote inside literal",
			in:   "SELECT 'it''s ds2' FROM ds2",
			want: "SELECT 'it''s ds2' FROM dataset_2",
		},
		{
			name: "quoted identifier is rewritten without quotes",
			in:   `SELECT * FROM "ds2"`,
			want: "SELECT * FROM dataset_2",
		},
		{
			name: "other quoted identifiers pass through",
			in:   `SELECT "weird col" FROM ds2`,
			want: `SELECT "weird col" FROM dataset_2`,
		},
		{
			name: "substring of a longer token is untouched",
			in:   "SELECT * FROM ds2_archive",
			want: "SELECT * FROM ds2_archive",
		},
		{
			name: "no bindings referenced",
			in:   "SELECT 1",
			want: "SELECT 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Rewrite(tt.in, bindings))
		})
	}
}

func TestRewrite_NoBindings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SELECT * FROM ds2", Rewrite("SELECT * FROM ds2", nil))
}

func TestEnsureLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		rowCap int
		want   string
	}{
		{
			name:   "appends when absent",
			in:     "SELECT * FROM dataset_1",
			rowCap: 100,
			want:   "SELECT * FROM dataset_1 LIMIT 100",
		},
		{
			name:   "strips trailing semicolon",
			in:     "SELECT * FROM dataset_1;",
			rowCap: 10,
			want:   "SELECT * FROM dataset_1 LIMIT 10",
		},
		{
			name:   "existing limit wins",
			in:     "SELECT * FROM dataset_1 LIMIT 5",
			rowCap: 100,
			want:   "SELECT * FROM dataset_1 LIMIT 5",
		},
		{
			name:   "limit keyword is case-insensitive",
			in:     "select * from dataset_1 limit 5",
			rowCap: 100,
			want:   "select * from dataset_1 limit 5",
		},
		{
			name:   "limit inside a string literal does not count",
			in:     "SELECT 'limit' FROM dataset_1",
			rowCap: 7,
			want:   "SELECT 'limit' FROM dataset_1 LIMIT 7",
		},
		{
			name:   "zero cap leaves the query alone",
			in:     "SELECT * FROM dataset_1",
			rowCap: 0,
			want:   "SELECT * FROM dataset_1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, EnsureLimit(tt.in, tt.rowCap))
		})
	}
}
