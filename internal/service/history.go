package service

import (
	"sync"
	"time"

	"kbqa/internal/domain"
)

// History keeps the most recent answered questions, newest first.
type History struct {
	mu      sync.Mutex
	max     int
	records []domain.HistoryRecord
}

func NewHistory(max int) *History {
	if max <= 0 {
		max = 10
	}
	return &History{max: max}
}

// Add puts rec in front and drops the oldest records beyond the cap.
func (h *History) Add(rec domain.HistoryRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append([]domain.HistoryRecord{rec}, h.records...)
	if len(h.records) > h.max {
		h.records = h.records[:h.max]
	}
}

// Records returns a copy, newest first.
func (h *History) Records() []domain.HistoryRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.HistoryRecord(nil), h.records...)
}

func (h *History) Clear() {
	h.mu.Lock()
	h.records = nil
	h.mu.Unlock()
}

// FormatTimestamp renders a history timestamp as HH:MM:SS.
func FormatTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}

// HistoryTitle is the one-line summary of a record: the first 50 characters
// of the question and its time.
func HistoryTitle(rec domain.HistoryRecord) string {
	q := []rune(rec.Question)
	if len(q) > 50 {
		q = q[:50]
	}
	return "Q: " + string(q) + "... (" + FormatTimestamp(rec.Timestamp) + ")"
}
