package api

import (
	"encoding/json"
	"time"

	"aihub/internal/domain"
)

// submitQueryRequest is the POST /v1/query body.
type submitQueryRequest struct {
	Query        string   `json:"query"`
	DatasetIDs   []string `json:"datasetIds"`
	OutputFormat string   `json:"outputFormat"`
	Limit        int      `json:"limit,omitempty"`
}

// queryRecordResponse is the wire shape of a query record. Result is raw
// JSON for the json and table formats and a plain string for csv, so
// structured payloads are not double-encoded.
type queryRecordResponse struct {
	ID           string      `json:"id"`
	Query        string      `json:"query"`
	DatasetIDs   []string    `json:"datasetIds"`
	OutputFormat string      `json:"outputFormat"`
	Status       string      `json:"status"`
	Result       interface{} `json:"result,omitempty"`
	Columns      []string    `json:"columns,omitempty"`
	RowCount     *int        `json:"rowCount,omitempty"`
	ErrorMessage *string     `json:"errorMessage,omitempty"`
	DurationMs   *int64      `json:"durationMs,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	CompletedAt  *time.Time  `json:"completedAt,omitempty"`
}

// listResponse wraps a page of items with the total count.
type listResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
}

// datasetResponse is the wire shape of a dataset manifest entry.
type datasetResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StorageKey  string    `json:"storageKey"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toQueryRecordResponse(rec *domain.QueryRecord) queryRecordResponse {
	resp := queryRecordResponse{
		ID:           rec.ID,
		Query:        rec.SQLText,
		DatasetIDs:   rec.DatasetIDs,
		OutputFormat: string(rec.OutputFormat),
		Status:       string(rec.Status),
		Columns:      rec.Columns,
		RowCount:     rec.RowCount,
		ErrorMessage: rec.ErrorMessage,
		DurationMs:   rec.DurationMs,
		CreatedAt:    rec.CreatedAt,
		CompletedAt:  rec.CompletedAt,
	}
	if rec.Result != nil {
		if rec.OutputFormat == domain.FormatCSV {
			resp.Result = *rec.Result
		} else {
			resp.Result = json.RawMessage(*rec.Result)
		}
	}
	return resp
}

func toDatasetResponse(ds *domain.Dataset) datasetResponse {
	return datasetResponse{
		ID:          ds.ID,
		Name:        ds.Name,
		StorageKey:  ds.StorageKey,
		ContentType: ds.ContentType,
		SizeBytes:   ds.SizeBytes,
		CreatedAt:   ds.CreatedAt,
	}
}
