package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	HTTPStatus int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (HTTP %d): %s", e.HTTPStatus, e.Message)
}

// Client is a thin HTTP client for the query hub API.
type Client struct {
	host   string
	token  string
	apiKey string
	http   *http.Client
}

// NewClient creates a Client. token and apiKey may be empty; whichever is
// set is attached to every request.
func NewClient(host, token, apiKey string) *Client {
	return &Client{
		host:   host,
		token:  token,
		apiKey: apiKey,
		http:   &http.Client{Timeout: 60 * time.Second},
	}
}

// envelope mirrors the server's uniform response shape.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// QueryRecord is the wire shape of a query record.
type QueryRecord struct {
	ID           string          `json:"id"`
	Query        string          `json:"query"`
	DatasetIDs   []string        `json:"datasetIds"`
	OutputFormat string          `json:"outputFormat"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result,omitempty"`
	Columns      []string        `json:"columns,omitempty"`
	RowCount     *int            `json:"rowCount,omitempty"`
	ErrorMessage *string         `json:"errorMessage,omitempty"`
	DurationMs   *int64          `json:"durationMs,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
}

// Dataset is the wire shape of a dataset manifest entry.
type Dataset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StorageKey  string    `json:"storageKey"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DatasetSchema is the wire shape of a dataset schema inspection.
type DatasetSchema struct {
	DatasetID    string   `json:"datasetId"`
	Columns      []string `json:"columns"`
	ExampleQuery string   `json:"exampleQuery"`
}

type recordList struct {
	Items []QueryRecord `json:"items"`
	Total int64         `json:"total"`
}

type datasetList struct {
	Items []Dataset `json:"items"`
	Total int64     `json:"total"`
}

// SubmitQuery submits a query for asynchronous execution and returns the
// pending record.
func (c *Client) SubmitQuery(ctx context.Context, sqlText string, datasetIDs []string, format string, limit int) (*QueryRecord, error) {
	body := map[string]interface{}{
		"query":      sqlText,
		"datasetIds": datasetIDs,
	}
	if format != "" {
		body["outputFormat"] = format
	}
	if limit > 0 {
		body["limit"] = limit
	}
	var rec QueryRecord
	if err := c.do(ctx, http.MethodPost, "/v1/query", body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetResult fetches a query record by id.
func (c *Client) GetResult(ctx context.Context, id string) (*QueryRecord, error) {
	var rec QueryRecord
	if err := c.do(ctx, http.MethodGet, "/v1/query/result/"+url.PathEscape(id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// WaitForResult polls until the record reaches a terminal status or ctx ends.
func (c *Client) WaitForResult(ctx context.Context, id string, interval time.Duration) (*QueryRecord, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		rec, err := c.GetResult(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec.Status == "completed" || rec.Status == "failed" {
			return rec, nil
		}
		select {
		case <-ctx.Done():
			return rec, ctx.Err()
		case <-ticker.C:
		}
	}
}

// ListResults fetches the caller's query history, newest first.
func (c *Client) ListResults(ctx context.Context, maxResults, skip int) ([]QueryRecord, int64, error) {
	var list recordList
	path := fmt.Sprintf("/v1/query/results?limit=%d&offset=%d", maxResults, skip)
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, 0, err
	}
	return list.Items, list.Total, nil
}

// CancelQuery requests cancellation of an in-flight query.
func (c *Client) CancelQuery(ctx context.Context, id string) (*QueryRecord, error) {
	var rec QueryRecord
	if err := c.do(ctx, http.MethodPost, "/v1/query/cancel/"+url.PathEscape(id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListDatasets fetches the caller's datasets, newest first.
func (c *Client) ListDatasets(ctx context.Context, maxResults, skip int) ([]Dataset, int64, error) {
	var list datasetList
	path := fmt.Sprintf("/v1/datasets?limit=%d&offset=%d", maxResults, skip)
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, 0, err
	}
	return list.Items, list.Total, nil
}

// GetDataset fetches a dataset manifest entry by id.
func (c *Client) GetDataset(ctx context.Context, id string) (*Dataset, error) {
	var ds Dataset
	if err := c.do(ctx, http.MethodGet, "/v1/datasets/"+url.PathEscape(id), nil, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// GetDatasetSchema inspects a dataset's header and reports its columns.
func (c *Client) GetDatasetSchema(ctx context.Context, id string) (*DatasetSchema, error) {
	var schema DatasetSchema
	if err := c.do(ctx, http.MethodGet, "/v1/datasets/"+url.PathEscape(id)+"/schema", nil, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{HTTPStatus: resp.StatusCode, Message: "unreadable response body"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{HTTPStatus: resp.StatusCode, Message: msg}
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
