package security

import (
	"strings"
	"sync"
	"time"
)

type recentSubmission struct {
	content string
	seenAt  time.Time
}

// DuplicateDetector keeps a short-term memory of each user's recent
// submission text per submission type and rejects near-identical
// resubmission inside the window.
type DuplicateDetector struct {
	mu     sync.Mutex
	recent map[string][]recentSubmission
	window time.Duration

	now func() time.Time
}

func NewDuplicateDetector(window time.Duration) *DuplicateDetector {
	if window <= 0 {
		window = DuplicateWindow
	}
	return &DuplicateDetector{
		recent: make(map[string][]recentSubmission),
		window: window,
		now:    time.Now,
	}
}

// CheckAndRecord reports whether content duplicates one of the user's
// submissions of the same type inside the window. Non-duplicates are
// recorded; duplicates are not. Anonymous submissions (empty userID) are
// never treated as duplicates.
func (d *DuplicateDetector) CheckAndRecord(submissionType, userID, content string) bool {
	if userID == "" {
		return false
	}

	normalized := strings.ToLower(strings.TrimSpace(content))
	key := submissionType + "|" + userID
	now := d.now()
	cutoff := now.Add(-d.window)

	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.recent[key][:0]
	for _, s := range d.recent[key] {
		if s.seenAt.After(cutoff) {
			kept = append(kept, s)
		}
	}

	for _, s := range kept {
		if s.content == normalized {
			d.recent[key] = kept
			return true
		}
	}

	d.recent[key] = append(kept, recentSubmission{content: normalized, seenAt: now})
	return false
}

// Sweep drops submission lists whose entries have all aged out.
func (d *DuplicateDetector) Sweep() {
	now := d.now()
	cutoff := now.Add(-d.window)

	d.mu.Lock()
	defer d.mu.Unlock()

	for key, subs := range d.recent {
		kept := subs[:0]
		for _, s := range subs {
			if s.seenAt.After(cutoff) {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(d.recent, key)
		} else {
			d.recent[key] = kept
		}
	}
}
