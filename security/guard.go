package security

import (
	"fmt"
	"sync"
	"time"
)

type entry struct {
	count        int
	windowStart  time.Time
	warnings     int
	blocked      bool
	blockedUntil time.Time
	lastSeen     time.Time
}

// Guard tracks per-identity request counts in fixed windows, escalates
// repeated violations into temporary blocks and maintains the permanent IP
// blocklist. All state lives in process memory; decisions never touch I/O.
type Guard struct {
	mu         sync.RWMutex
	categories map[string]CategoryConfig
	entries    map[string]*entry // keyed by identity key + "|" + category
	blockedIPs map[string]struct{}

	log      *ActivityLog
	notifier Notifier

	now func() time.Time
}

func NewGuard(categories map[string]CategoryConfig, log *ActivityLog, notifier Notifier) *Guard {
	if categories == nil {
		categories = DefaultCategories()
	}
	if log == nil {
		log = NewActivityLog(ActivityLogCap)
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Guard{
		categories: categories,
		entries:    make(map[string]*entry),
		blockedIPs: make(map[string]struct{}),
		log:        log,
		notifier:   notifier,
		now:        time.Now,
	}
}

func entryKey(identityKey, category string) string {
	return identityKey + "|" + category
}

// Check applies the rate limit policy for one request. Warning and block
// notifications are dispatched through the Notifier; a failing notifier
// cannot affect the returned decision.
func (g *Guard) Check(id Identity, category string) Decision {
	cfg, known := g.categories[category]
	if !known {
		return Decision{Allowed: true}
	}

	now := g.now()

	g.mu.Lock()

	if _, banned := g.blockedIPs[id.IP()]; banned {
		g.mu.Unlock()
		g.log.Record(SuspiciousActivity{
			Identifier: id.Key(),
			IP:         id.IP(),
			Action:     "Request from blocklisted IP on " + category,
			Severity:   SeverityCritical,
			Timestamp:  now,
		})
		return Decision{
			Blocked:   true,
			IPBlocked: true,
			Message:   "Access denied. Your IP address has been blocked.",
		}
	}

	key := entryKey(id.Key(), category)
	e, exists := g.entries[key]

	if exists && e.blocked {
		if now.Before(e.blockedUntil) {
			remaining := int(e.blockedUntil.Sub(now).Minutes()) + 1
			g.mu.Unlock()
			return Decision{
				Blocked:          true,
				RemainingMinutes: remaining,
				Message:          fmt.Sprintf("You are temporarily blocked. Try again in %d minutes.", remaining),
			}
		}
		// Block expired: counters and warnings both reset, this request
		// starts a fresh window.
		e.blocked = false
		e.blockedUntil = time.Time{}
		e.warnings = 0
		e.count = 1
		e.windowStart = now
		e.lastSeen = now
		g.mu.Unlock()
		return Decision{Allowed: true}
	}

	if !exists {
		g.entries[key] = &entry{count: 1, windowStart: now, lastSeen: now}
		g.mu.Unlock()
		return Decision{Allowed: true}
	}

	e.lastSeen = now

	if now.Sub(e.windowStart) > cfg.Window {
		// Window rolled over. Warnings deliberately survive the reset so
		// repeated near-threshold bursts still escalate.
		e.count = 1
		e.windowStart = now
		g.mu.Unlock()
		return Decision{Allowed: true}
	}

	e.count++
	if e.count <= cfg.MaxRequests {
		g.mu.Unlock()
		return Decision{Allowed: true}
	}

	e.warnings++
	warnings := e.warnings

	var severity Severity
	var reason string
	switch {
	case warnings == 1:
		severity = SeverityMedium
		reason = fmt.Sprintf("Rate limit exceeded for %s", category)
	case warnings == 2:
		severity = SeverityHigh
		reason = fmt.Sprintf("Rate limit exceeded for %s (final warning)", category)
	default:
		severity = SeverityCritical
		reason = fmt.Sprintf("Repeated rate limit violations for %s", category)
	}

	blocked := false
	if warnings >= MaxWarnings {
		e.blocked = true
		e.blockedUntil = now.Add(BlockDuration)
		g.blockedIPs[id.IP()] = struct{}{}
		blocked = true
	}

	g.mu.Unlock()

	g.log.Record(SuspiciousActivity{
		Identifier: id.Key(),
		IP:         id.IP(),
		Action:     reason,
		Severity:   severity,
		Timestamp:  now,
	})
	g.notifier.NotifyViolation(id, severity, reason, now)

	d := Decision{
		Blocked:     blocked,
		Warnings:    warnings,
		MaxWarnings: MaxWarnings,
		RetryAfter:  int(cfg.Window.Seconds()),
		Message:     fmt.Sprintf("Too many requests. Warning %d of %d.", warnings, MaxWarnings),
	}
	if blocked {
		d.Message = fmt.Sprintf("Too many violations. You are blocked for %d minutes.", int(BlockDuration.Minutes()))
	}
	return d
}

// ==================== BLOCK REGISTRY ====================

func (g *Guard) IsIPBlocked(ip string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.blockedIPs[ip]
	return ok
}

func (g *Guard) BlockIP(ip string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blockedIPs[ip] = struct{}{}
}

// UnblockIP removes an IP from the permanent blocklist and reports whether
// it was present.
func (g *Guard) UnblockIP(ip string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.blockedIPs[ip]; !ok {
		return false
	}
	delete(g.blockedIPs, ip)
	return true
}

// UnblockIdentity clears any active block for the identity key across all
// categories, resetting warnings and counters for the cleared entries. It
// returns false when no blocked entry exists, without touching anything.
func (g *Guard) UnblockIdentity(identityKey string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	cleared := false
	for category := range g.categories {
		e, ok := g.entries[entryKey(identityKey, category)]
		if !ok || !e.blocked {
			continue
		}
		e.blocked = false
		e.blockedUntil = time.Time{}
		e.warnings = 0
		e.count = 0
		cleared = true
	}
	return cleared
}

// IsIdentityBlocked reports whether the identity has an active block in any
// category, and the longest remaining duration in seconds.
func (g *Guard) IsIdentityBlocked(identityKey string) (bool, int) {
	now := g.now()

	g.mu.RLock()
	defer g.mu.RUnlock()

	remaining := 0
	for category := range g.categories {
		e, ok := g.entries[entryKey(identityKey, category)]
		if !ok || !e.blocked || !now.Before(e.blockedUntil) {
			continue
		}
		if secs := int(e.blockedUntil.Sub(now).Seconds()); secs > remaining {
			remaining = secs
		}
	}
	return remaining > 0, remaining
}

// ==================== MAINTENANCE ====================

// Stats is an operator-facing snapshot of guard state.
type Stats struct {
	TrackedEntries    int `json:"tracked_entries"`
	BlockedIdentities int `json:"blocked_identities"`
	BlockedIPs        int `json:"blocked_ips"`
}

func (g *Guard) Snapshot() Stats {
	now := g.now()

	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Stats{TrackedEntries: len(g.entries), BlockedIPs: len(g.blockedIPs)}
	for _, e := range g.entries {
		if e.blocked && now.Before(e.blockedUntil) {
			s.BlockedIdentities++
		}
	}
	return s
}

// Sweep removes entries idle longer than EntryIdleExpiry. Entries under an
// active block are kept so the block survives until it expires. Returns the
// number of entries removed.
func (g *Guard) Sweep() int {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for key, e := range g.entries {
		if e.blocked && now.Before(e.blockedUntil) {
			continue
		}
		if now.Sub(e.lastSeen) > EntryIdleExpiry {
			delete(g.entries, key)
			removed++
		}
	}
	return removed
}
