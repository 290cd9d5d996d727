// Package app provides application-level wiring and dependency injection,
// following hexagonal architecture: main() supplies the external handles,
// New() assembles repositories and services around them.
package app

import (
	"database/sql"
	"log/slog"

	"aihub/internal/config"
	"aihub/internal/db/repository"
	"aihub/internal/domain"
	"aihub/internal/service/dataset"
	"aihub/internal/service/query"
)

// Deps holds the external dependencies that main() must provide: database
// handles, the dataset fetcher, config, and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Fetcher domain.ObjectFetcher
	Logger  *slog.Logger
}

// Services groups the service pointers the API handler needs.
type Services struct {
	Query   *query.Service
	Dataset *dataset.Service
}

// App holds the fully-wired application.
type App struct {
	Services Services
	Records  *repository.QueryRecordRepo
	Datasets *repository.DatasetRepo
}

// New wires repositories and services from the provided deps.
func New(deps Deps) *App {
	// Writes go through the single-connection pool; reads use the read pool.
	recordRepo := repository.NewQueryRecordRepo(deps.WriteDB)
	datasetRepo := repository.NewDatasetRepo(deps.WriteDB)

	querySvc := query.NewService(
		recordRepo,
		datasetRepo,
		deps.Fetcher,
		deps.Logger.With("component", "query"),
		query.WithTimeout(deps.Cfg.QueryTimeout),
		query.WithDefaultMaxRows(deps.Cfg.QueryMaxRows),
	)
	datasetSvc := dataset.NewService(
		datasetRepo,
		deps.Fetcher,
		deps.Logger.With("component", "dataset"),
	)

	return &App{
		Services: Services{Query: querySvc, Dataset: datasetSvc},
		Records:  recordRepo,
		Datasets: datasetRepo,
	}
}
