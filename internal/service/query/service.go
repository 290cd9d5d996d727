// Package query orchestrates ad-hoc query execution: dataset resolution,
// workspace loading, execution, result formatting, and lifecycle recording.
package query

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"aihub/internal/domain"
)

// Service runs query submissions against per-request workspaces and keeps
// their lifecycle in the record store.
type Service struct {
	records  domain.QueryRecordRepository
	datasets domain.DatasetRepository
	fetcher  domain.ObjectFetcher
	logger   *slog.Logger

	timeout        time.Duration
	defaultMaxRows int

	cancels sync.Map // record id -> context.CancelFunc
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout sets the wall-clock execution cap per query.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithDefaultMaxRows sets the row cap applied when the caller sets none.
// Zero disables the default cap.
func WithDefaultMaxRows(n int) Option {
	return func(s *Service) { s.defaultMaxRows = n }
}

// NewService creates a query Service.
func NewService(records domain.QueryRecordRepository, datasets domain.DatasetRepository, fetcher domain.ObjectFetcher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		records:  records,
		datasets: datasets,
		fetcher:  fetcher,
		logger:   logger,
		timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the request, resolves the datasets against the caller's
// ownership, creates a pending record, and starts background execution.
// The returned record is in pending status; outcomes are reported through
// record state, not through this call's error.
func (s *Service) Submit(ctx context.Context, ownerName string, req domain.QueryRequest) (*domain.QueryRecord, error) {
	if strings.TrimSpace(req.SQLText) == "" {
		return nil, domain.ErrValidation("query is required")
	}
	if len(req.DatasetIDs) == 0 {
		return nil, domain.ErrValidation("datasetIds must not be empty")
	}
	if !domain.ValidOutputFormat(req.OutputFormat) {
		return nil, domain.ErrValidation("outputFormat must be one of json, csv, table")
	}
	if req.Limit < 0 {
		return nil, domain.ErrValidation("limit must not be negative")
	}

	// Ownership check happens before any record exists or any byte loads.
	resolved := make([]domain.Dataset, len(req.DatasetIDs))
	for i, id := range req.DatasetIDs {
		ds, err := s.datasets.GetByID(ctx, id, ownerName)
		if err != nil {
			return nil, err
		}
		resolved[i] = *ds
	}

	rec, err := s.records.Create(ctx, &domain.QueryRecord{
		OwnerName:    ownerName,
		SQLText:      req.SQLText,
		DatasetIDs:   req.DatasetIDs,
		OutputFormat: req.OutputFormat,
		Status:       domain.QueryStatusPending,
	})
	if err != nil {
		return nil, err
	}

	execCtx, cancel := context.WithCancel(context.Background())
	s.cancels.Store(rec.ID, cancel)

	go s.run(execCtx, cancel, rec.ID, req, resolved)

	return rec, nil
}

// GetResult returns the record only when ownerName matches its owner.
func (s *Service) GetResult(ctx context.Context, ownerName, id string) (*domain.QueryRecord, error) {
	return s.records.GetByID(ctx, id, ownerName)
}

// ListHistory returns the owner's records, newest first.
func (s *Service) ListHistory(ctx context.Context, ownerName string, page domain.PageRequest) ([]domain.QueryRecord, int64, error) {
	return s.records.List(ctx, ownerName, page)
}

// Cancel stops an in-flight query and fails its record with a
// cancellation message. Canceling an already-terminal record is a no-op.
func (s *Service) Cancel(ctx context.Context, ownerName, id string) (*domain.QueryRecord, error) {
	rec, err := s.records.GetByID(ctx, id, ownerName)
	if err != nil {
		return nil, err
	}
	if rec.Status.Terminal() {
		return rec, nil
	}

	if cancelRaw, ok := s.cancels.Load(id); ok {
		if cancelFn, ok := cancelRaw.(context.CancelFunc); ok {
			cancelFn()
		}
	}

	if err := s.records.MarkFailed(ctx, id, canceledMessage, time.Since(rec.CreatedAt)); err != nil {
		return nil, err
	}

	return s.records.GetByID(ctx, id, ownerName)
}
