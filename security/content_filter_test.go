package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsOrdinaryComplaints(t *testing.T) {
	f := NewContentFilter()

	for _, text := range []string{
		"The pothole on Main St is getting worse",
		"Street light near ward 12 has been out for a week.",
		"Garbage collection skipped our lane again, please check https://example.com/photo1",
	} {
		assert.NoError(t, f.Validate(text), "text: %s", text)
	}
}

func TestValidateRejectsEmptyContent(t *testing.T) {
	f := NewContentFilter()

	for _, text := range []string{"", "   ", "\n\t "} {
		err := f.Validate(text)
		require.Error(t, err)
		var cerr *ContentError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "Empty content", cerr.Reason)
	}
}

func TestValidateRejectsSpamKeywords(t *testing.T) {
	f := NewContentFilter()

	err := f.Validate("FREE MONEY now!!!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "free money")

	err = f.Validate("best casino in town")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "casino")
}

func TestValidateRejectsSuspiciousPatterns(t *testing.T) {
	f := NewContentFilter()

	cases := map[string]string{
		"suspicious TLD": "check out deals.xyz for more",
		"credit card":    "my card 4111 1111 1111 1111 was charged",
		"too many URLs":  "http://a.com http://b.com http://c.com",
		"repeated chars": "AAAAAAAAAA",
		"repeated marks": "fix this now!!!!!!!!!!",
	}
	for name, text := range cases {
		err := f.Validate(text)
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "suspicious pattern", name)
	}
}

func TestValidateRejectsExcessiveCaps(t *testing.T) {
	f := NewContentFilter()

	err := f.Validate("THIS ROAD IS COMPLETELY BROKEN fix it")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capitalization")

	// Short shouting is tolerated: the caps rule needs more than ten letters.
	assert.NoError(t, f.Validate("BAD ROAD"))
}

func TestValidateChecksShortCircuitInOrder(t *testing.T) {
	f := NewContentFilter()

	// Keyword match wins over the caps rule.
	err := f.Validate("FREE MONEY " + strings.Repeat("A B ", 20))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "free money")
}

type stubClassifier struct {
	spam   bool
	reason string
	calls  int
}

func (c *stubClassifier) Classify(string) (bool, string) {
	c.calls++
	return c.spam, c.reason
}

func TestValidateConsultsClassifierLast(t *testing.T) {
	cls := &stubClassifier{spam: true, reason: "promotional"}
	f := NewContentFilterWithClassifier(cls)

	// Heuristic rejections never reach the classifier.
	require.Error(t, f.Validate("best casino in town"))
	assert.Equal(t, 0, cls.calls)

	err := f.Validate("Water supply disrupted in ward 4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "promotional")
	assert.Equal(t, 1, cls.calls)

	cls.spam = false
	assert.NoError(t, f.Validate("Water supply disrupted in ward 4"))
}
