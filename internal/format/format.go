// Package format converts raw query results into the supported output
// encodings. No format performs numeric coercion: values pass through as
// the executor returned them.
package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"aihub/internal/domain"
	"aihub/internal/workspace"
)

// Table is the columnar encoding: values in column order, not keyed by name.
type Table struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Encode renders res in the requested format and returns the payload as
// text: JSON for the structured and columnar encodings, raw delimited text
// for CSV.
func Encode(res *workspace.Result, f domain.OutputFormat) (string, error) {
	switch f {
	case domain.FormatJSON:
		payload, err := json.Marshal(Structured(res))
		if err != nil {
			return "", fmt.Errorf("encode structured result: %w", err)
		}
		return string(payload), nil
	case domain.FormatCSV:
		return Delimited(res), nil
	case domain.FormatTable:
		payload, err := json.Marshal(Tabular(res))
		if err != nil {
			return "", fmt.Errorf("encode tabular result: %w", err)
		}
		return string(payload), nil
	default:
		return "", domain.ErrValidation("unsupported output format %q", f)
	}
}

// Structured returns the rows as field→value mappings, one per row.
func Structured(res *workspace.Result) []map[string]interface{} {
	out := make([]map[string]interface{}, len(res.Rows))
	for i, row := range res.Rows {
		rec := make(map[string]interface{}, len(res.Columns))
		for j, col := range res.Columns {
			rec[col] = row[j]
		}
		out[i] = rec
	}
	return out
}

// Delimited returns a header line of comma-joined column names followed by
// one comma-joined, double-quote-wrapped line per row. Nulls serialize to
// an empty quoted field. An empty row set yields an empty string.
func Delimited(res *workspace.Result) string {
	if len(res.Rows) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.Join(res.Columns, ","))
	for _, row := range res.Rows {
		b.WriteByte('\n')
		for j, v := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quoteField(v))
		}
	}
	return b.String()
}

// Tabular returns the compact columnar encoding.
func Tabular(res *workspace.Result) Table {
	rows := res.Rows
	if rows == nil {
		rows = [][]interface{}{}
	}
	return Table{Columns: res.Columns, Rows: rows}
}

func quoteField(v interface{}) string {
	if v == nil {
		return `""`
	}
	s := fmt.Sprintf("%v", v)
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
