// Package redcap defines the contract with the external record store and
// provides the HTTP API client plus an in-memory fake for tests.
package redcap

import "context"

// Record is one flat field map, the shape of REDCap's flat-JSON record
// export. Update documents written back through SaveRecords use the same
// shape, sparsely populated.
type Record map[string]string

// FetchOptions narrows a record export. Empty slices mean "no filter".
type FetchOptions struct {
	Fields  []string
	Records []string
	Events  []string
}

// SaveResult reports the outcome of one batch import. Errors carries the
// platform's per-record error strings; a non-empty Errors does not imply
// Count is zero, partial imports happen.
type SaveResult struct {
	Count  int      `json:"count"`
	Errors []string `json:"errors,omitempty"`
}

// Store is the record store contract consumed by the reconciliation engine
// and batch writer. Implementations must treat every call as stateless: no
// caching of record data between invocations.
type Store interface {
	// FetchRecords exports records as flat field maps.
	FetchRecords(ctx context.Context, projectID string, opts FetchOptions) ([]Record, error)

	// SaveRecords imports one batch of sparse update documents.
	SaveRecords(ctx context.Context, projectID string, records []Record) (SaveResult, error)

	// RecordIDField returns the name of the project's record identifier field.
	RecordIDField(ctx context.Context, projectID string) (string, error)

	// EventID resolves a unique event name to the platform's event id.
	EventID(ctx context.Context, projectID, uniqueEventName string) (string, error)
}
