// Package batch partitions update documents into fixed-size chunks and
// persists each chunk through the record store.
package batch

import (
	"context"
	"fmt"

	"epicsync/internal/redcap"
)

// DefaultSize is the number of update documents persisted per save call.
const DefaultSize = 50

// Chunk partitions items into contiguous groups of at most size, preserving
// order. The final group may be smaller; an empty group is never produced,
// so an input whose length is an exact multiple of size yields exactly
// len(items)/size groups.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultSize
	}
	var chunks [][]T
	for len(items) > 0 {
		n := min(size, len(items))
		chunks = append(chunks, items[:n:n])
		items = items[n:]
	}
	return chunks
}

// Saver is the slice of the store contract the writer needs.
type Saver interface {
	SaveRecords(ctx context.Context, projectID string, records []redcap.Record) (redcap.SaveResult, error)
}

// Result is the outcome of persisting one chunk. Err is set when the save
// call itself failed; Saved.Errors carries the store's per-record errors on
// an otherwise successful call.
type Result struct {
	RecordIDs []string
	Saved     redcap.SaveResult
	Err       error
}

// Failed reports whether the chunk needs attention, either a transport
// failure or store-side record errors.
func (r Result) Failed() bool {
	return r.Err != nil || len(r.Saved.Errors) > 0
}

// Writer persists update documents in order, one save call per chunk.
type Writer struct {
	saver   Saver
	idField string
	size    int
}

// NewWriter constructs a writer. idField names the record identifier field
// inside each update document, used to report which records a failed chunk
// covered.
func NewWriter(saver Saver, idField string, size int) (*Writer, error) {
	if saver == nil {
		return nil, fmt.Errorf("saver is required")
	}
	if idField == "" {
		return nil, fmt.Errorf("record id field is required")
	}
	if size <= 0 {
		size = DefaultSize
	}
	return &Writer{saver: saver, idField: idField, size: size}, nil
}

// Write submits every update document exactly once, in input order, across
// one save call per chunk. A failed chunk is reported in its Result and does
// not stop later chunks; retry policy belongs to the caller.
func (w *Writer) Write(ctx context.Context, projectID string, updates []redcap.Record) []Result {
	var results []Result
	for _, chunk := range Chunk(updates, w.size) {
		result := Result{RecordIDs: w.recordIDs(chunk)}
		result.Saved, result.Err = w.saver.SaveRecords(ctx, projectID, chunk)
		if result.Err != nil {
			result.Err = fmt.Errorf("save batch of %d: %w", len(chunk), result.Err)
		}
		results = append(results, result)
	}
	return results
}

func (w *Writer) recordIDs(chunk []redcap.Record) []string {
	ids := make([]string, 0, len(chunk))
	for _, rec := range chunk {
		ids = append(ids, rec[w.idField])
	}
	return ids
}
