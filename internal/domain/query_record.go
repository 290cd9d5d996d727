package domain

import "time"

// QueryStatus represents the lifecycle state of a query record.
type QueryStatus string

// Query record lifecycle statuses. Transitions are strictly forward:
// pending → executing → completed|failed. Terminal states are immutable.
const (
	QueryStatusPending   QueryStatus = "pending"
	QueryStatusExecuting QueryStatus = "executing"
	QueryStatusCompleted QueryStatus = "completed"
	QueryStatusFailed    QueryStatus = "failed"
)

// Terminal reports whether the status is a terminal state.
func (s QueryStatus) Terminal() bool {
	return s == QueryStatusCompleted || s == QueryStatusFailed
}

// OutputFormat selects the encoding of a query result payload.
type OutputFormat string

// Supported output formats.
const (
	FormatJSON  OutputFormat = "json"  // structured records, one object per row
	FormatCSV   OutputFormat = "csv"   // delimited text with a header line
	FormatTable OutputFormat = "table" // columnar {columns, rows}
)

// ValidOutputFormat reports whether f is one of the supported formats.
func ValidOutputFormat(f OutputFormat) bool {
	switch f {
	case FormatJSON, FormatCSV, FormatTable:
		return true
	}
	return false
}

// QueryRecord stores durable state for one query submission, from request
// to terminal outcome. The result payload is format-dependent: JSON text
// for "json" and "table", raw delimited text for "csv".
type QueryRecord struct {
	ID           string
	OwnerName    string
	SQLText      string
	DatasetIDs   []string
	OutputFormat OutputFormat
	Status       QueryStatus
	Result       *string
	ErrorMessage *string
	DurationMs   *int64
	RowCount     *int
	Columns      []string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// QueryRequest is the transient submission payload. It is validated at the
// boundary and never persisted as-is.
type QueryRequest struct {
	SQLText      string
	DatasetIDs   []string
	OutputFormat OutputFormat
	Limit        int // optional row cap, 0 means unset
}
