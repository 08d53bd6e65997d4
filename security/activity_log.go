package security

import (
	"sync"
	"time"
)

// ActivityLog is a bounded in-memory ring of suspicious activity records,
// oldest evicted first. It exists for operator inspection only; nothing in
// the rate limit policy reads it back.
type ActivityLog struct {
	mu      sync.RWMutex
	entries []SuspiciousActivity
	head    int
	size    int
	cap     int
}

func NewActivityLog(capacity int) *ActivityLog {
	if capacity <= 0 {
		capacity = ActivityLogCap
	}
	return &ActivityLog{
		entries: make([]SuspiciousActivity, capacity),
		cap:     capacity,
	}
}

func (l *ActivityLog) Record(a SuspiciousActivity) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[l.head] = a
	l.head = (l.head + 1) % l.cap
	if l.size < l.cap {
		l.size++
	}
}

// Recent returns up to limit records, most recent first.
func (l *ActivityLog) Recent(limit int) []SuspiciousActivity {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > l.size {
		limit = l.size
	}

	out := make([]SuspiciousActivity, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (l.head - 1 - i + l.cap*2) % l.cap
		out = append(out, l.entries[idx])
	}
	return out
}

func (l *ActivityLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// CountsBySeverity aggregates records newer than the window, keyed by
// severity. Used by the operator stats endpoint with a 24h window.
func (l *ActivityLog) CountsBySeverity(window time.Duration, now time.Time) map[Severity]int {
	cutoff := now.Add(-window)

	l.mu.RLock()
	defer l.mu.RUnlock()

	counts := make(map[Severity]int)
	for i := 0; i < l.size; i++ {
		idx := (l.head - 1 - i + l.cap*2) % l.cap
		a := l.entries[idx]
		if a.Timestamp.Before(cutoff) {
			// Ring is append-ordered; everything older follows.
			break
		}
		counts[a.Severity]++
	}
	return counts
}
