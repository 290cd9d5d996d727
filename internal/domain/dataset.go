package domain

import "time"

// Dataset describes an uploaded file: who owns it, where its bytes live,
// and what the uploader declared about it. Immutable once created — the
// query core only ever reads these rows.
type Dataset struct {
	ID          string
	OwnerName   string
	Name        string
	StorageKey  string
	ContentType string
	SizeBytes   int64
	CreatedAt   time.Time
}
