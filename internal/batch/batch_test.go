package batch

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epicsync/internal/redcap"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		size      int
		wantSizes []int
	}{
		{"empty input", 0, 50, nil},
		{"single undersized", 25, 50, []int{25}},
		{"remainder chunk", 125, 50, []int{50, 50, 25}},
		{"exact multiple has no empty tail", 100, 50, []int{50, 50}},
		{"size one", 3, 1, []int{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]int, tt.count)
			for i := range items {
				items[i] = i
			}
			chunks := Chunk(items, tt.size)
			require.Len(t, chunks, len(tt.wantSizes))

			var flat []int
			for i, chunk := range chunks {
				assert.Len(t, chunk, tt.wantSizes[i])
				flat = append(flat, chunk...)
			}
			assert.Equal(t, items, append([]int{}, flat...), "order and coverage preserved")
		})
	}
}

// recordingSaver captures every save call and can fail selected batches.
type recordingSaver struct {
	batches [][]redcap.Record
	failOn  map[int]error
}

func (s *recordingSaver) SaveRecords(_ context.Context, _ string, records []redcap.Record) (redcap.SaveResult, error) {
	call := len(s.batches)
	s.batches = append(s.batches, records)
	if err, ok := s.failOn[call]; ok {
		return redcap.SaveResult{}, err
	}
	return redcap.SaveResult{Count: len(records)}, nil
}

func updates(n int) []redcap.Record {
	out := make([]redcap.Record, n)
	for i := range out {
		out[i] = redcap.Record{"record_id": strconv.Itoa(1000 + i), "primary_city": "Palo Alto"}
	}
	return out
}

func TestWriterBatchSizes(t *testing.T) {
	saver := &recordingSaver{}
	writer, err := NewWriter(saver, "record_id", 50)
	require.NoError(t, err)

	results := writer.Write(context.Background(), "17", updates(125))

	require.Len(t, saver.batches, 3)
	assert.Len(t, saver.batches[0], 50)
	assert.Len(t, saver.batches[1], 50)
	assert.Len(t, saver.batches[2], 25)

	require.Len(t, results, 3)
	for _, r := range results {
		assert.False(t, r.Failed())
	}
	// Every document submitted exactly once, in order.
	assert.Equal(t, "1000", saver.batches[0][0]["record_id"])
	assert.Equal(t, "1050", saver.batches[1][0]["record_id"])
	assert.Equal(t, "1124", saver.batches[2][24]["record_id"])
}

func TestWriterExactMultipleSkipsEmptyCall(t *testing.T) {
	saver := &recordingSaver{}
	writer, err := NewWriter(saver, "record_id", 50)
	require.NoError(t, err)

	writer.Write(context.Background(), "17", updates(100))
	assert.Len(t, saver.batches, 2)
}

func TestWriterFailedChunkDoesNotAbortRun(t *testing.T) {
	saver := &recordingSaver{failOn: map[int]error{1: fmt.Errorf("store unavailable")}}
	writer, err := NewWriter(saver, "record_id", 10)
	require.NoError(t, err)

	results := writer.Write(context.Background(), "17", updates(25))

	require.Len(t, results, 3)
	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	assert.False(t, results[2].Failed())

	assert.ErrorContains(t, results[1].Err, "store unavailable")
	assert.Equal(t, []string{"1010", "1011", "1012", "1013", "1014", "1015", "1016", "1017", "1018", "1019"}, results[1].RecordIDs)

	// The third chunk was still attempted.
	require.Len(t, saver.batches, 3)
	assert.Len(t, saver.batches[2], 5)
}

func TestWriterEmptyInput(t *testing.T) {
	saver := &recordingSaver{}
	writer, err := NewWriter(saver, "record_id", 50)
	require.NoError(t, err)

	results := writer.Write(context.Background(), "17", nil)
	assert.Empty(t, results)
	assert.Empty(t, saver.batches)
}

func TestNewWriterValidation(t *testing.T) {
	_, err := NewWriter(nil, "record_id", 50)
	assert.Error(t, err)

	_, err = NewWriter(&recordingSaver{}, "", 50)
	assert.Error(t, err)
}
