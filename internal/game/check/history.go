package check

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/multierr"
)

// DefaultHistorySize is how many results MemoryHistory keeps.
const DefaultHistorySize = 50

// MemoryHistory keeps the most recent results in memory.
type MemoryHistory struct {
	mu      sync.RWMutex
	limit   int
	results []Result
}

// NewMemoryHistory creates a history holding at most limit results.
func NewMemoryHistory(limit int) *MemoryHistory {
	if limit < 1 {
		limit = DefaultHistorySize
	}
	return &MemoryHistory{limit: limit}
}

// Record implements Recorder.
func (h *MemoryHistory) Record(_ context.Context, r Result) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append(h.results, r)
	if over := len(h.results) - h.limit; over > 0 {
		h.results = slices.Delete(h.results, 0, over)
	}
	return nil
}

// Recent returns up to n results, newest first. n <= 0 returns all.
func (h *MemoryHistory) Recent(n int) []Result {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n <= 0 || n > len(h.results) {
		n = len(h.results)
	}
	out := make([]Result, 0, n)
	for i := len(h.results) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.results[i])
	}
	return out
}

// Len returns the number of stored results.
func (h *MemoryHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.results)
}

// Clear drops every result.
func (h *MemoryHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = nil
}

// Tee records to several recorders and combines their errors.
type Tee []Recorder

// Record implements Recorder.
func (t Tee) Record(ctx context.Context, r Result) error {
	var err error
	for _, rec := range t {
		if rec != nil {
			err = multierr.Append(err, rec.Record(ctx, r))
		}
	}
	return err
}
