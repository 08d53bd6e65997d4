package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	calls []Severity
}

func (n *recordingNotifier) NotifyViolation(_ Identity, severity Severity, _ string, _ time.Time) {
	n.calls = append(n.calls, severity)
}

func newTestGuard(t *testing.T) (*Guard, *recordingNotifier, *time.Time) {
	t.Helper()
	notifier := &recordingNotifier{}
	g := NewGuard(nil, NewActivityLog(100), notifier)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }
	return g, notifier, &now
}

func TestAllowsUpToCategoryLimit(t *testing.T) {
	g, _, _ := newTestGuard(t)
	id := AnonymousIdentity("203.0.113.7")

	for i := 0; i < 5; i++ {
		d := g.Check(id, CategoryComplaintSubmit)
		require.True(t, d.Allowed, "request %d should be allowed", i+1)
	}

	d := g.Check(id, CategoryComplaintSubmit)
	require.False(t, d.Allowed)
	assert.Equal(t, 1, d.Warnings)
	assert.Equal(t, MaxWarnings, d.MaxWarnings)
	assert.Equal(t, 60, d.RetryAfter)
	assert.False(t, d.Blocked)
}

func TestWindowExpiryResetsCount(t *testing.T) {
	g, _, now := newTestGuard(t)
	id := AnonymousIdentity("203.0.113.8")

	for i := 0; i < 5; i++ {
		g.Check(id, CategoryComplaintSubmit)
	}

	*now = now.Add(61 * time.Second)

	for i := 0; i < 5; i++ {
		d := g.Check(id, CategoryComplaintSubmit)
		require.True(t, d.Allowed, "request %d in fresh window should be allowed", i+1)
	}
}

func TestWarningsSurviveWindowReset(t *testing.T) {
	g, notifier, now := newTestGuard(t)
	id := AnonymousIdentity("203.0.113.9")

	// One violation per window across three windows escalates to a block.
	for window := 0; window < 3; window++ {
		for i := 0; i < 6; i++ {
			g.Check(id, CategoryComplaintSubmit)
		}
		*now = now.Add(61 * time.Second)
	}

	require.Equal(t, []Severity{SeverityMedium, SeverityHigh, SeverityCritical}, notifier.calls)
	assert.True(t, g.IsIPBlocked("203.0.113.9"))
}

func TestEscalationToBlock(t *testing.T) {
	g, _, _ := newTestGuard(t)
	id := UserIdentity("user-42", "198.51.100.4")

	for i := 0; i < 5; i++ {
		g.Check(id, CategoryComplaintSubmit)
	}

	var last Decision
	for i := 0; i < 3; i++ {
		last = g.Check(id, CategoryComplaintSubmit)
	}

	require.False(t, last.Allowed)
	assert.True(t, last.Blocked)
	assert.Equal(t, 3, last.Warnings)
	assert.True(t, g.IsIPBlocked("198.51.100.4"), "escalation must add the requester IP to the blocklist")

	blocked, remaining := g.IsIdentityBlocked(id.Key())
	assert.True(t, blocked)
	assert.Equal(t, int(BlockDuration.Seconds()), remaining)
}

func TestActiveBlockRejectsWithRemainingMinutes(t *testing.T) {
	g, _, now := newTestGuard(t)
	id := UserIdentity("user-43", "198.51.100.5")

	for i := 0; i < 8; i++ {
		g.Check(id, CategoryComplaintSubmit)
	}
	// Blocklisted IP short-circuits before per-identity state; clear it so
	// the temporary block path is exercised.
	require.True(t, g.UnblockIP("198.51.100.5"))

	*now = now.Add(10 * time.Minute)
	d := g.Check(id, CategoryComplaintSubmit)
	require.False(t, d.Allowed)
	assert.True(t, d.Blocked)
	assert.Zero(t, d.Warnings)
	assert.Equal(t, 21, d.RemainingMinutes)
}

func TestBlockExpiryClearsWarnings(t *testing.T) {
	g, notifier, now := newTestGuard(t)
	id := UserIdentity("user-44", "198.51.100.6")

	for i := 0; i < 8; i++ {
		g.Check(id, CategoryComplaintSubmit)
	}
	require.True(t, g.UnblockIP("198.51.100.6"))

	*now = now.Add(BlockDuration + time.Second)
	d := g.Check(id, CategoryComplaintSubmit)
	require.True(t, d.Allowed, "first request after block expiry starts fresh")

	// A fresh violation cycle starts from medium again.
	notifier.calls = nil
	for i := 0; i < 5; i++ {
		g.Check(id, CategoryComplaintSubmit)
	}
	require.Equal(t, []Severity{SeverityMedium}, notifier.calls)
}

func TestIPBlocklistAppliesAcrossIdentities(t *testing.T) {
	g, _, now := newTestGuard(t)
	abuser := UserIdentity("user-45", "198.51.100.7")

	for i := 0; i < 8; i++ {
		g.Check(abuser, CategoryComplaintSubmit)
	}
	require.True(t, g.IsIPBlocked("198.51.100.7"))

	// A different identity behind the same IP is rejected, even after the
	// originating temporary block would have expired.
	*now = now.Add(BlockDuration + time.Minute)
	other := UserIdentity("user-46", "198.51.100.7")
	d := g.Check(other, CategoryComplaintSubmit)
	require.False(t, d.Allowed)
	assert.True(t, d.IPBlocked)

	require.True(t, g.UnblockIP("198.51.100.7"))
	d = g.Check(other, CategoryComplaintSubmit)
	assert.True(t, d.Allowed)
}

func TestCategoriesTrackIndependently(t *testing.T) {
	g, _, _ := newTestGuard(t)
	id := UserIdentity("user-47", "198.51.100.8")

	for i := 0; i < 6; i++ {
		g.Check(id, CategoryComplaintSubmit)
	}

	d := g.Check(id, CategoryCommentPost)
	assert.True(t, d.Allowed, "a burst in one category must not consume another category's budget")
}

func TestUnknownCategoryAllowed(t *testing.T) {
	g, _, _ := newTestGuard(t)
	d := g.Check(AnonymousIdentity("203.0.113.1"), "nonexistent")
	assert.True(t, d.Allowed)
}

func TestUnblockIdentity(t *testing.T) {
	g, _, _ := newTestGuard(t)
	id := UserIdentity("user-48", "198.51.100.9")

	assert.False(t, g.UnblockIdentity(id.Key()), "unknown identity returns false")

	g.Check(id, CategoryComplaintSubmit)
	assert.False(t, g.UnblockIdentity(id.Key()), "tracked but unblocked identity returns false")

	for i := 0; i < 8; i++ {
		g.Check(id, CategoryComplaintSubmit)
	}
	require.True(t, g.UnblockIdentity(id.Key()))
	require.True(t, g.UnblockIP("198.51.100.9"))

	d := g.Check(id, CategoryComplaintSubmit)
	assert.True(t, d.Allowed)

	blocked, _ := g.IsIdentityBlocked(id.Key())
	assert.False(t, blocked)
}

func TestSweepKeepsActiveBlocks(t *testing.T) {
	g, _, now := newTestGuard(t)
	idle := AnonymousIdentity("203.0.113.20")
	blocked := UserIdentity("user-49", "198.51.100.10")

	g.Check(idle, CategoryAPIGeneral)
	for i := 0; i < 8; i++ {
		g.Check(blocked, CategoryComplaintSubmit)
	}
	require.True(t, g.UnblockIP("198.51.100.10"))

	*now = now.Add(6 * time.Minute)
	removed := g.Sweep()
	assert.Equal(t, 1, removed)

	d := g.Check(blocked, CategoryComplaintSubmit)
	assert.False(t, d.Allowed, "active block must survive the sweep")
}

func TestSnapshotCounts(t *testing.T) {
	g, _, _ := newTestGuard(t)
	id := UserIdentity("user-50", "198.51.100.11")

	for i := 0; i < 8; i++ {
		g.Check(id, CategoryComplaintSubmit)
	}

	s := g.Snapshot()
	assert.Equal(t, 1, s.TrackedEntries)
	assert.Equal(t, 1, s.BlockedIdentities)
	assert.Equal(t, 1, s.BlockedIPs)
}
