package security

import "time"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SuspiciousActivity is one audit record of a warning or block event.
type SuspiciousActivity struct {
	Identifier string    `json:"identifier"`
	IP         string    `json:"ip"`
	Action     string    `json:"action"`
	Severity   Severity  `json:"severity"`
	Timestamp  time.Time `json:"timestamp"`
}

// Decision is the outcome of a rate limit check. Exactly one of the
// rejection shapes applies when Allowed is false:
//   - IPBlocked: requester IP is on the permanent blocklist (403)
//   - Blocked with Warnings == 0: an active temporary block (429 + remaining minutes)
//   - Warnings > 0: threshold exceeded this window (429 + warning count), Blocked
//     reports whether this violation escalated into a block
type Decision struct {
	Allowed          bool
	Blocked          bool
	IPBlocked        bool
	Message          string
	Warnings         int
	MaxWarnings      int
	RetryAfter       int // seconds
	RemainingMinutes int
}

// Notifier delivers warning/block messages to the affected user.
// Implementations must not block and must swallow delivery failures;
// a failed notification never affects the rate limit verdict.
type Notifier interface {
	NotifyViolation(id Identity, severity Severity, reason string, at time.Time)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) NotifyViolation(Identity, Severity, string, time.Time) {}
