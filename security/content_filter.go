package security

import (
	"regexp"
	"strings"
	"unicode"
)

// ContentError is an expected, user-facing content rejection.
type ContentError struct {
	Reason string
}

func (e *ContentError) Error() string {
	return e.Reason
}

var spamKeywords = []string{
	"viagra",
	"casino",
	"free money",
	"lottery winner",
	"click here to claim",
	"earn money fast",
	"work from home guaranteed",
	"crypto investment",
	"double your bitcoin",
	"hot singles",
}

var (
	suspiciousTLDRegexp = regexp.MustCompile(`(?i)\b[a-z0-9-]+\.(?:xyz|tk|ml|ga|cf)\b`)
	creditCardRegexp    = regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{4}\b`)
	urlRegexp           = regexp.MustCompile(`(?i)https?://\S+`)
)

const (
	maxRepeatedRun  = 10
	capsRatioLimit  = 0.5
	capsLetterFloor = 10
	maxURLCount     = 3
)

// Classifier is an external spam classifier. The filter consumes its verdict
// as-is; whether the verdict is right is the classifier's problem.
type Classifier interface {
	Classify(text string) (spam bool, reason string)
}

// ContentFilter runs static spam heuristics against free-text submissions.
// It is pure and synchronous; every check short-circuits on first failure.
// A Classifier, when configured, runs last so the cheap checks screen the
// obvious cases first.
type ContentFilter struct {
	keywords   []string
	classifier Classifier
}

func NewContentFilter() *ContentFilter {
	return &ContentFilter{keywords: spamKeywords}
}

func NewContentFilterWithClassifier(c Classifier) *ContentFilter {
	return &ContentFilter{keywords: spamKeywords, classifier: c}
}

// Validate returns nil for acceptable text, or a *ContentError naming the
// reason the text was rejected.
func (f *ContentFilter) Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ContentError{Reason: "Empty content"}
	}

	lowered := strings.ToLower(text)
	for _, keyword := range f.keywords {
		if strings.Contains(lowered, keyword) {
			return &ContentError{Reason: "Content contains prohibited keyword: " + keyword}
		}
	}

	if hasSuspiciousPattern(text) {
		return &ContentError{Reason: "Content matches a suspicious pattern"}
	}

	if hasExcessiveCaps(text) {
		return &ContentError{Reason: "Excessive capitalization"}
	}

	if f.classifier != nil {
		if spam, reason := f.classifier.Classify(text); spam {
			if reason == "" {
				reason = "spam"
			}
			return &ContentError{Reason: "Flagged by content classifier: " + reason}
		}
	}

	return nil
}

func hasSuspiciousPattern(text string) bool {
	if suspiciousTLDRegexp.MatchString(text) {
		return true
	}
	if creditCardRegexp.MatchString(text) {
		return true
	}
	if len(urlRegexp.FindAllStringIndex(text, maxURLCount)) >= maxURLCount {
		return true
	}
	return hasRepeatedRun(text, maxRepeatedRun)
}

// hasRepeatedRun reports whether any rune occurs n or more times in a row.
// Go's regexp has no backreferences, so this is a plain scan.
func hasRepeatedRun(text string, n int) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
			if run >= n {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

func hasExcessiveCaps(text string) bool {
	letters, uppers := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	if letters <= capsLetterFloor {
		return false
	}
	return float64(uppers)/float64(letters) > capsRatioLimit
}
