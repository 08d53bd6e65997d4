package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector(t *testing.T) (*DuplicateDetector, *time.Time) {
	t.Helper()
	d := NewDuplicateDetector(DuplicateWindow)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }
	return d, &now
}

func TestDuplicateWithinWindow(t *testing.T) {
	d, _ := newTestDetector(t)

	require.False(t, d.CheckAndRecord("complaint", "user-1", "Pothole on Main St"))
	assert.True(t, d.CheckAndRecord("complaint", "user-1", "Pothole on Main St"))

	// Matching is trimmed and case-folded.
	assert.True(t, d.CheckAndRecord("complaint", "user-1", "  POTHOLE ON MAIN ST  "))
}

func TestDuplicateExpiresAfterWindow(t *testing.T) {
	d, now := newTestDetector(t)

	require.False(t, d.CheckAndRecord("complaint", "user-1", "Pothole on Main St"))

	*now = now.Add(DuplicateWindow + time.Second)
	assert.False(t, d.CheckAndRecord("complaint", "user-1", "Pothole on Main St"))
}

func TestNoDuplicateAcrossUsersOrTypes(t *testing.T) {
	d, _ := newTestDetector(t)

	require.False(t, d.CheckAndRecord("complaint", "user-1", "Pothole on Main St"))
	assert.False(t, d.CheckAndRecord("complaint", "user-2", "Pothole on Main St"))
	assert.False(t, d.CheckAndRecord("comment", "user-1", "Pothole on Main St"))
}

func TestAnonymousNeverDuplicate(t *testing.T) {
	d, _ := newTestDetector(t)

	assert.False(t, d.CheckAndRecord("complaint", "", "Pothole on Main St"))
	assert.False(t, d.CheckAndRecord("complaint", "", "Pothole on Main St"))
}

func TestDuplicateNotRecorded(t *testing.T) {
	d, now := newTestDetector(t)

	require.False(t, d.CheckAndRecord("complaint", "user-1", "Pothole on Main St"))

	// A duplicate must not refresh the window.
	*now = now.Add(4 * time.Minute)
	require.True(t, d.CheckAndRecord("complaint", "user-1", "Pothole on Main St"))

	*now = now.Add(90 * time.Second)
	assert.False(t, d.CheckAndRecord("complaint", "user-1", "Pothole on Main St"))
}

func TestSweepDropsAgedLists(t *testing.T) {
	d, now := newTestDetector(t)

	d.CheckAndRecord("complaint", "user-1", "first")
	d.CheckAndRecord("complaint", "user-2", "second")

	*now = now.Add(DuplicateWindow + time.Second)
	d.CheckAndRecord("complaint", "user-2", "third")
	d.Sweep()

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Len(t, d.recent, 1)
}
