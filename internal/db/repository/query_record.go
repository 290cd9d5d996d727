package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"aihub/internal/domain"
)

var _ domain.QueryRecordRepository = (*QueryRecordRepo)(nil)

// QueryRecordRepo stores query lifecycle state in SQLite. Status transitions
// are guarded UPDATEs: each one names the status it moves away from, so a
// terminal record can never regress or re-enter executing.
type QueryRecordRepo struct {
	db *sql.DB
}

// NewQueryRecordRepo creates a new QueryRecordRepo.
func NewQueryRecordRepo(db *sql.DB) *QueryRecordRepo {
	return &QueryRecordRepo{db: db}
}

// Create inserts a new record in pending status.
func (r *QueryRecordRepo) Create(ctx context.Context, rec *domain.QueryRecord) (*domain.QueryRecord, error) {
	if rec == nil {
		return nil, domain.ErrValidation("query record is required")
	}
	if rec.ID == "" {
		rec.ID = domain.NewID()
	}
	if rec.Status == "" {
		rec.Status = domain.QueryStatusPending
	}
	if rec.Status != domain.QueryStatusPending {
		return nil, domain.ErrValidation("query record must be created in pending status")
	}

	idsJSON, err := json.Marshal(rec.DatasetIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal dataset ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO query_records (id, owner_name, sql_text, dataset_ids, output_format, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.OwnerName, rec.SQLText, string(idsJSON), string(rec.OutputFormat), string(rec.Status))
	if err != nil {
		return nil, mapDBError(err)
	}

	return r.getByID(ctx, rec.ID)
}

// MarkExecuting transitions a pending record to executing.
func (r *QueryRecordRepo) MarkExecuting(ctx context.Context, id string) error {
	return r.transition(ctx, id, `
		UPDATE query_records SET status = ?
		WHERE id = ? AND status = ?
	`, string(domain.QueryStatusExecuting), id, string(domain.QueryStatusPending))
}

// MarkCompleted stores the result payload and moves an executing record to
// completed.
func (r *QueryRecordRepo) MarkCompleted(ctx context.Context, id string, result string, columns []string, rowCount int, duration time.Duration) error {
	columnsJSON, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("marshal columns: %w", err)
	}

	return r.transition(ctx, id, `
		UPDATE query_records
		SET status = ?, result = ?, columns_json = ?, row_count = ?, duration_ms = ?,
		    error_message = NULL, completed_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`, string(domain.QueryStatusCompleted), result, string(columnsJSON), rowCount,
		duration.Milliseconds(), id, string(domain.QueryStatusExecuting))
}

// MarkFailed moves a pending or executing record to failed with an error
// message. Failing an already-terminal record is a no-op.
func (r *QueryRecordRepo) MarkFailed(ctx context.Context, id string, message string, duration time.Duration) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE query_records
		SET status = ?, error_message = ?, duration_ms = ?, completed_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status IN (?, ?)
	`, string(domain.QueryStatusFailed), message, duration.Milliseconds(), id,
		string(domain.QueryStatusPending), string(domain.QueryStatusExecuting))
	if err != nil {
		return mapDBError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Either unknown id or already terminal. Terminal is a no-op.
		if _, err := r.getByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// GetByID returns the record only when ownerName matches the stored owner.
func (r *QueryRecordRepo) GetByID(ctx context.Context, id, ownerName string) (*domain.QueryRecord, error) {
	rec, err := r.getOne(ctx, selectRecord+` WHERE id = ? AND owner_name = ?`, id, ownerName)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns the owner's records, newest first.
func (r *QueryRecordRepo) List(ctx context.Context, ownerName string, page domain.PageRequest) ([]domain.QueryRecord, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM query_records WHERE owner_name = ?`, ownerName).Scan(&total)
	if err != nil {
		return nil, 0, mapDBError(err)
	}

	rows, err := r.db.QueryContext(ctx, selectRecord+`
		WHERE owner_name = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, ownerName, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var records []domain.QueryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError(err)
	}

	return records, total, nil
}

const selectRecord = `
	SELECT id, owner_name, sql_text, dataset_ids, output_format, status,
	       result, columns_json, row_count, error_message, duration_ms,
	       created_at, completed_at
	FROM query_records`

// transition runs a guarded status UPDATE. Zero rows affected means the
// record is either unknown or not in the expected prior state.
func (r *QueryRecordRepo) transition(ctx context.Context, id, stmt string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return mapDBError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := r.getByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrConflict("query record %q is not in the expected state", id)
	}
	return nil
}

// getByID loads a record without the owner filter; internal use only.
func (r *QueryRecordRepo) getByID(ctx context.Context, id string) (*domain.QueryRecord, error) {
	return r.getOne(ctx, selectRecord+` WHERE id = ?`, id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *QueryRecordRepo) getOne(ctx context.Context, stmt string, args ...interface{}) (*domain.QueryRecord, error) {
	row := r.db.QueryRowContext(ctx, stmt, args...)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func scanRecord(s rowScanner) (*domain.QueryRecord, error) {
	var (
		rec                 domain.QueryRecord
		idsJSON             string
		format, status      string
		result, columnsJSON sql.NullString
		errorMessage        sql.NullString
		rowCount            sql.NullInt64
		durationMs          sql.NullInt64
		createdAt           time.Time
		completedAt         sql.NullTime
	)

	err := s.Scan(
		&rec.ID,
		&rec.OwnerName,
		&rec.SQLText,
		&idsJSON,
		&format,
		&status,
		&result,
		&columnsJSON,
		&rowCount,
		&errorMessage,
		&durationMs,
		&createdAt,
		&completedAt,
	)
	if err != nil {
		return nil, mapDBError(err)
	}

	rec.OutputFormat = domain.OutputFormat(format)
	rec.Status = domain.QueryStatus(status)
	rec.CreatedAt = createdAt

	if err := json.Unmarshal([]byte(idsJSON), &rec.DatasetIDs); err != nil {
		return nil, fmt.Errorf("unmarshal dataset ids: %w", err)
	}
	if result.Valid {
		v := result.String
		rec.Result = &v
	}
	if columnsJSON.Valid && columnsJSON.String != "" {
		if err := json.Unmarshal([]byte(columnsJSON.String), &rec.Columns); err != nil {
			return nil, fmt.Errorf("unmarshal columns: %w", err)
		}
	}
	if rowCount.Valid {
		n := int(rowCount.Int64)
		rec.RowCount = &n
	}
	if errorMessage.Valid {
		msg := errorMessage.String
		rec.ErrorMessage = &msg
	}
	if durationMs.Valid {
		d := durationMs.Int64
		rec.DurationMs = &d
	}
	if completedAt.Valid {
		t := completedAt.Time
		rec.CompletedAt = &t
	}

	return &rec, nil
}
