package security

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentMostRecentFirst(t *testing.T) {
	l := NewActivityLog(10)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		l.Record(SuspiciousActivity{
			Identifier: fmt.Sprintf("ip:203.0.113.%d", i),
			Severity:   SeverityMedium,
			Timestamp:  base.Add(time.Duration(i) * time.Second),
		})
	}

	recent := l.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "ip:203.0.113.2", recent[0].Identifier)
	assert.Equal(t, "ip:203.0.113.1", recent[1].Identifier)
}

func TestRingEvictsOldest(t *testing.T) {
	l := NewActivityLog(5)

	for i := 0; i < 8; i++ {
		l.Record(SuspiciousActivity{Identifier: fmt.Sprintf("id-%d", i)})
	}

	require.Equal(t, 5, l.Len())
	recent := l.Recent(0)
	require.Len(t, recent, 5)
	assert.Equal(t, "id-7", recent[0].Identifier)
	assert.Equal(t, "id-3", recent[4].Identifier)
}

func TestCountsBySeverityWindow(t *testing.T) {
	l := NewActivityLog(10)
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	l.Record(SuspiciousActivity{Severity: SeverityLow, Timestamp: now.Add(-36 * time.Hour)})
	l.Record(SuspiciousActivity{Severity: SeverityMedium, Timestamp: now.Add(-2 * time.Hour)})
	l.Record(SuspiciousActivity{Severity: SeverityMedium, Timestamp: now.Add(-time.Hour)})
	l.Record(SuspiciousActivity{Severity: SeverityCritical, Timestamp: now.Add(-time.Minute)})

	counts := l.CountsBySeverity(24*time.Hour, now)
	assert.Equal(t, 2, counts[SeverityMedium])
	assert.Equal(t, 1, counts[SeverityCritical])
	assert.Zero(t, counts[SeverityLow])
}
