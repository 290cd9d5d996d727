package repository

import (
	"context"
	"database/sql"

	"aihub/internal/domain"
)

var _ domain.DatasetRepository = (*DatasetRepo)(nil)

// DatasetRepo stores dataset manifest rows in SQLite. Every lookup is
// owner-scoped so one user's datasets are invisible to another.
type DatasetRepo struct {
	db *sql.DB
}

// NewDatasetRepo creates a new DatasetRepo.
func NewDatasetRepo(db *sql.DB) *DatasetRepo {
	return &DatasetRepo{db: db}
}

// Create inserts a new dataset manifest row.
func (r *DatasetRepo) Create(ctx context.Context, ds *domain.Dataset) (*domain.Dataset, error) {
	if ds == nil {
		return nil, domain.ErrValidation("dataset is required")
	}
	if ds.OwnerName == "" || ds.Name == "" || ds.StorageKey == "" {
		return nil, domain.ErrValidation("owner, name, and storage key are required")
	}
	if ds.ID == "" {
		ds.ID = domain.NewID()
	}
	if ds.ContentType == "" {
		ds.ContentType = "text/csv"
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO datasets (id, owner_name, name, storage_key, content_type, size_bytes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ds.ID, ds.OwnerName, ds.Name, ds.StorageKey, ds.ContentType, ds.SizeBytes)
	if err != nil {
		return nil, mapDBError(err)
	}

	return r.GetByID(ctx, ds.ID, ds.OwnerName)
}

// GetByID returns the dataset only when ownerName matches the stored owner.
func (r *DatasetRepo) GetByID(ctx context.Context, id, ownerName string) (*domain.Dataset, error) {
	var (
		ds        domain.Dataset
		createdAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_name, name, storage_key, content_type, size_bytes, created_at
		FROM datasets
		WHERE id = ? AND owner_name = ?
	`, id, ownerName).Scan(&ds.ID, &ds.OwnerName, &ds.Name, &ds.StorageKey, &ds.ContentType, &ds.SizeBytes, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound("dataset %q not found", id)
		}
		return nil, mapDBError(err)
	}
	if createdAt.Valid {
		ds.CreatedAt = createdAt.Time
	}
	return &ds, nil
}

// List returns the owner's datasets, newest first.
func (r *DatasetRepo) List(ctx context.Context, ownerName string, page domain.PageRequest) ([]domain.Dataset, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM datasets WHERE owner_name = ?`, ownerName).Scan(&total)
	if err != nil {
		return nil, 0, mapDBError(err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_name, name, storage_key, content_type, size_bytes, created_at
		FROM datasets
		WHERE owner_name = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, ownerName, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var datasets []domain.Dataset
	for rows.Next() {
		var (
			ds        domain.Dataset
			createdAt sql.NullTime
		)
		if err := rows.Scan(&ds.ID, &ds.OwnerName, &ds.Name, &ds.StorageKey, &ds.ContentType, &ds.SizeBytes, &createdAt); err != nil {
			return nil, 0, mapDBError(err)
		}
		if createdAt.Valid {
			ds.CreatedAt = createdAt.Time
		}
		datasets = append(datasets, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError(err)
	}

	return datasets, total, nil
}
