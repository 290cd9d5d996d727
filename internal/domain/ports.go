package domain

import (
	"context"
	"io"
	"time"
)

// QueryRecordRepository persists query lifecycle state. Implementations must
// enforce the forward-only state machine: a terminal record never re-enters
// executing, and updates to unknown ids report NotFoundError.
type QueryRecordRepository interface {
	Create(ctx context.Context, rec *QueryRecord) (*QueryRecord, error)
	MarkExecuting(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, result string, columns []string, rowCount int, duration time.Duration) error
	MarkFailed(ctx context.Context, id string, message string, duration time.Duration) error
	// GetByID returns the record only when ownerName matches the stored
	// owner; otherwise NotFoundError.
	GetByID(ctx context.Context, id, ownerName string) (*QueryRecord, error)
	// List returns the owner's records, newest first.
	List(ctx context.Context, ownerName string, page PageRequest) ([]QueryRecord, int64, error)
}

// DatasetRepository reads the dataset manifest. Lookups are owner-scoped:
// a dataset owned by someone else is indistinguishable from a missing one.
type DatasetRepository interface {
	Create(ctx context.Context, ds *Dataset) (*Dataset, error)
	GetByID(ctx context.Context, id, ownerName string) (*Dataset, error)
	List(ctx context.Context, ownerName string, page PageRequest) ([]Dataset, int64, error)
}

// ObjectFetcher retrieves raw dataset content given a storage locator.
type ObjectFetcher interface {
	Fetch(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
