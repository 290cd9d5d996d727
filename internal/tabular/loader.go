// Package tabular parses delimited dataset content into typed workspace
// relations. Every column loads as text — numeric or date interpretation is
// left to the query layer's own casting.
package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"aihub/internal/domain"
	"aihub/internal/workspace"
)

// insertBatchSize bounds how many parsed rows are held before flushing to
// the workspace, so large datasets don't buffer fully in memory.
const insertBatchSize = 500

// LoadResult reports what a load actually produced.
type LoadResult struct {
	Relation    string
	Columns     []string
	RowCount    int
	SkippedRows int
}

// Load reads delimited text from r and materializes it into a freshly
// created relation in ws. The first line is the header; its fields become
// sanitized column names. A data row whose field count does not match the
// header is skipped, not fatal. An empty source fails the whole load.
func Load(ctx context.Context, ws *workspace.Workspace, relation string, r io.Reader) (*LoadResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // arity is checked per row so bad rows skip
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrLoad("dataset is empty")
		}
		return nil, domain.ErrLoad("read header: %s", err.Error())
	}

	columns := SanitizeColumns(header)
	if err := ws.CreateRelation(ctx, relation, columns); err != nil {
		return nil, err
	}

	res := &LoadResult{Relation: relation, Columns: columns}

	batch := make([][]string, 0, insertBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ws.InsertRows(ctx, relation, batch); err != nil {
			return err
		}
		res.RowCount += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Malformed row: skip it rather than aborting the load.
			res.SkippedRows++
			continue
		}
		if len(record) != len(columns) {
			res.SkippedRows++
			continue
		}
		batch = append(batch, record)
		if len(batch) == insertBatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return res, nil
}

// SanitizeColumns converts raw header fields into safe relation column
// names: quotes stripped, non [A-Za-z0-9_] runes replaced with underscores,
// leading digits prefixed, empties and duplicates disambiguated.
func SanitizeColumns(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))

	for i, field := range header {
		name := sanitizeIdent(field)
		if name == "" {
			name = fmt.Sprintf("col_%d", i+1)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		seen[name] = 1
		columns[i] = name
	}
	return columns
}

func sanitizeIdent(field string) string {
	field = strings.TrimSpace(field)
	field = strings.Trim(field, `"'`)

	var b strings.Builder
	b.Grow(len(field))
	for _, r := range field {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	name := b.String()
	if r := []rune(name); len(r) > 0 && unicode.IsDigit(r[0]) {
		name = "_" + name
	}
	return name
}
