// Package dataset exposes read access to the dataset manifest and header
// inspection of the underlying objects.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"aihub/internal/domain"
	"aihub/internal/tabular"
)

// Service answers dataset catalog queries for a single caller.
type Service struct {
	datasets domain.DatasetRepository
	fetcher  domain.ObjectFetcher
	logger   *slog.Logger
}

// Schema describes the columns a dataset exposes once loaded, plus an
// example query written against its positional relation name.
type Schema struct {
	DatasetID    string   `json:"datasetId"`
	Columns      []string `json:"columns"`
	ExampleQuery string   `json:"exampleQuery"`
}

// NewService creates a dataset Service.
func NewService(datasets domain.DatasetRepository, fetcher domain.ObjectFetcher, logger *slog.Logger) *Service {
	return &Service{datasets: datasets, fetcher: fetcher, logger: logger}
}

// Register records a dataset in the manifest.
func (s *Service) Register(ctx context.Context, ds *domain.Dataset) (*domain.Dataset, error) {
	return s.datasets.Create(ctx, ds)
}

// Get returns the dataset only when ownerName matches its owner.
func (s *Service) Get(ctx context.Context, ownerName, id string) (*domain.Dataset, error) {
	return s.datasets.GetByID(ctx, id, ownerName)
}

// List returns the owner's datasets, newest first.
func (s *Service) List(ctx context.Context, ownerName string, page domain.PageRequest) ([]domain.Dataset, int64, error) {
	return s.datasets.List(ctx, ownerName, page)
}

// GetSchema fetches just enough of the dataset to read its header row and
// reports the sanitized column names the query layer will see.
func (s *Service) GetSchema(ctx context.Context, ownerName, id string) (*Schema, error) {
	ds, err := s.datasets.GetByID(ctx, id, ownerName)
	if err != nil {
		return nil, err
	}

	body, err := s.fetcher.Fetch(ctx, ds.StorageKey)
	if err != nil {
		return nil, domain.ErrLoad("dataset %s: %v", ds.ID, err)
	}
	defer body.Close()

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrLoad("dataset %s is empty", ds.ID)
		}
		return nil, domain.ErrLoad("dataset %s: %v", ds.ID, err)
	}

	columns := tabular.SanitizeColumns(header)
	example := "SELECT * FROM dataset_1 LIMIT 10"
	if len(columns) > 0 {
		example = fmt.Sprintf("SELECT %s FROM dataset_1 LIMIT 10", columns[0])
	}
	return &Schema{
		DatasetID:    ds.ID,
		Columns:      columns,
		ExampleQuery: example,
	}, nil
}
