package core

import (
	"context"
	"sync"
	"time"
)

// UploadSummary records the outcome of one processed upload. Only counts are
// kept; the aggregated data itself lives in the Store.
type UploadSummary struct {
	UploadID   string        `json:"upload_id"`
	FileName   string        `json:"file_name"`
	LinesRead  int           `json:"lines_read"`
	Users      int           `json:"users"`
	Orders     int           `json:"orders"`
	Products   int           `json:"products"`
	ErrorCount int           `json:"error_count"`
	Duration   time.Duration `json:"duration_ns"`
	UploadedAt time.Time     `json:"uploaded_at"`
}

// UploadHistory stores upload summaries. Implementations must be safe for
// concurrent use.
type UploadHistory interface {
	Record(ctx context.Context, s UploadSummary) error
	Recent(ctx context.Context, limit int) ([]UploadSummary, error)
}

// HistoryPruner is implemented by histories that can drop old summaries.
type HistoryPruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// DefaultHistoryCapacity is used by NewMemoryHistory for a non-positive size.
const DefaultHistoryCapacity = 100

// MemoryHistory keeps the most recent summaries in memory.
type MemoryHistory struct {
	mu       sync.Mutex
	capacity int
	entries  []UploadSummary // oldest first
}

// NewMemoryHistory returns a history that keeps at most capacity entries.
func NewMemoryHistory(capacity int) *MemoryHistory {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &MemoryHistory{capacity: capacity}
}

// Record appends s, evicting the oldest entry when full.
func (h *MemoryHistory) Record(_ context.Context, s UploadSummary) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, s)
	if over := len(h.entries) - h.capacity; over > 0 {
		h.entries = append([]UploadSummary(nil), h.entries[over:]...)
	}
	return nil
}

// Recent returns up to limit summaries, newest first.
func (h *MemoryHistory) Recent(_ context.Context, limit int) ([]UploadSummary, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if limit <= 0 || limit > len(h.entries) {
		limit = len(h.entries)
	}
	out := make([]UploadSummary, 0, limit)
	for i := len(h.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.entries[i])
	}
	return out, nil
}

// Prune drops summaries uploaded before the cutoff.
func (h *MemoryHistory) Prune(_ context.Context, before time.Time) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	kept := h.entries[:0]
	for _, e := range h.entries {
		if !e.UploadedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	removed := int64(len(h.entries) - len(kept))
	clear(h.entries[len(kept):])
	h.entries = kept
	return removed, nil
}

// summarize counts what an aggregation produced.
func summarize(uploadID, fileName string, res AggregationResult, d time.Duration, at time.Time) UploadSummary {
	s := UploadSummary{
		UploadID:   uploadID,
		FileName:   fileName,
		LinesRead:  res.LinesRead,
		Users:      len(res.Users),
		ErrorCount: len(res.Errors),
		Duration:   d,
		UploadedAt: at,
	}
	for _, u := range res.Users {
		s.Orders += len(u.Orders)
		for _, o := range u.Orders {
			s.Products += len(o.Products)
		}
	}
	return s
}
