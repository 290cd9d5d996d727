// Package workspace owns the isolated in-memory relational store that one
// query execution runs against. Each Workspace wraps its own DuckDB
// instance: nothing is shared between executions, and Close discards every
// relation created during the request.
package workspace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"aihub/internal/domain"
)

// Workspace is a private, per-execution relational store. It must never be
// shared across requests: the SQL it executes is caller-controlled.
// Loading different relations from separate goroutines of the same
// execution is safe; mu guards the relation registry.
type Workspace struct {
	db *sql.DB

	mu        sync.Mutex
	relations map[string][]string // relation name -> column names
}

// Result holds the raw output of one statement.
type Result struct {
	Columns  []string
	Rows     [][]interface{}
	RowCount int
}

// Open creates a fresh in-memory DuckDB instance for one execution.
func Open(ctx context.Context) (*Workspace, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping workspace: %w", err)
	}
	return &Workspace{db: db, relations: make(map[string][]string)}, nil
}

// Close discards the workspace and every relation in it.
func (w *Workspace) Close() error {
	return w.db.Close()
}

// CreateRelation declares a new text-typed relation with the given column
// names. Binding a name twice in one workspace is a conflict.
func (w *Workspace) CreateRelation(ctx context.Context, name string, columns []string) error {
	if len(columns) == 0 {
		return domain.ErrValidation("relation %q needs at least one column", name)
	}

	w.mu.Lock()
	if _, exists := w.relations[name]; exists {
		w.mu.Unlock()
		return domain.ErrConflict("relation %q is already bound in this workspace", name)
	}
	w.relations[name] = columns
	w.mu.Unlock()

	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = quoteIdent(col) + " VARCHAR"
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
	if _, err := w.db.ExecContext(ctx, stmt); err != nil {
		w.mu.Lock()
		delete(w.relations, name)
		w.mu.Unlock()
		return fmt.Errorf("create relation %q: %w", name, err)
	}

	return nil
}

// InsertRow appends one row. The value count must equal the relation's
// declared column count.
func (w *Workspace) InsertRow(ctx context.Context, name string, values []string) error {
	columns, ok := w.columnsFor(name)
	if !ok {
		return domain.ErrNotFound("relation %q is not bound in this workspace", name)
	}
	if len(values) != len(columns) {
		return domain.ErrValidation("relation %q expects %d values, got %d", name, len(columns), len(values))
	}
	return w.insertBatch(ctx, name, [][]string{values})
}

// InsertRows appends many rows inside one transaction. Rows with the wrong
// arity are rejected up front; the loader filters those before calling.
func (w *Workspace) InsertRows(ctx context.Context, name string, rows [][]string) error {
	columns, ok := w.columnsFor(name)
	if !ok {
		return domain.ErrNotFound("relation %q is not bound in this workspace", name)
	}
	for _, row := range rows {
		if len(row) != len(columns) {
			return domain.ErrValidation("relation %q expects %d values, got %d", name, len(columns), len(row))
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return w.insertBatch(ctx, name, rows)
}

func (w *Workspace) columnsFor(name string) ([]string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	columns, ok := w.relations[name]
	return columns, ok
}

func (w *Workspace) insertBatch(ctx context.Context, name string, rows [][]string) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert into %q: %w", name, err)
	}
	defer tx.Rollback() //nolint:errcheck

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(rows[0])), ", ")
	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(name), placeholders))
	if err != nil {
		return fmt.Errorf("prepare insert into %q: %w", name, err)
	}
	defer stmt.Close() //nolint:errcheck

	for _, row := range rows {
		args := make([]interface{}, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert into %q: %w", name, err)
		}
	}

	return tx.Commit()
}

// Execute runs the caller's (rewritten) statement and captures the full
// result set. Engine failures come back as QueryExecutionError with the
// engine's message verbatim; a deadline or cancellation becomes
// ResourceExceededError.
func (w *Workspace) Execute(ctx context.Context, sqlText string) (*Result, error) {
	rows, err := w.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, classifyExecError(ctx, err)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var resultRows [][]interface{}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		// Convert byte slices to strings for JSON serialization
		row := make([]interface{}, len(vals))
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			} else {
				row[i] = v
			}
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyExecError(ctx, err)
	}

	return &Result{
		Columns:  cols,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

func classifyExecError(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.ErrResourceExceeded("query exceeded the execution time limit")
	case errors.Is(ctx.Err(), context.Canceled):
		return domain.ErrResourceExceeded("query canceled")
	default:
		return domain.ErrQueryExecution("%s", err.Error())
	}
}

// quoteIdent wraps an identifier in double quotes, doubling any embedded
// quote characters.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
