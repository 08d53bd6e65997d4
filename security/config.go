package security

import "time"

// Action categories checked by the guard. Each submission route group is
// wired to exactly one category.
const (
	CategoryComplaintSubmit = "complaint_submit"
	CategoryCommentPost     = "comment_post"
	CategoryChatMessage     = "chat_message"
	CategoryAPIGeneral      = "api_general"
	CategoryVote            = "vote"
)

const (
	// BlockDuration is how long an identity stays blocked once warnings
	// escalate past MaxWarnings.
	BlockDuration = 30 * time.Minute

	// MaxWarnings is the cumulative warning count that converts into a block.
	MaxWarnings = 3

	// DuplicateWindow is how long a submission counts against near-identical
	// resubmission by the same user.
	DuplicateWindow = 5 * time.Minute

	// ActivityLogCap bounds the in-memory suspicious activity ring.
	ActivityLogCap = 1000

	// SweepInterval is how often idle rate limit entries are reclaimed.
	SweepInterval = time.Minute

	// EntryIdleExpiry is how long an unblocked entry may sit untouched
	// before the sweep removes it.
	EntryIdleExpiry = 5 * time.Minute
)

type CategoryConfig struct {
	MaxRequests int
	Window      time.Duration
	Description string
}

// DefaultCategories returns the compiled-in per-category thresholds.
func DefaultCategories() map[string]CategoryConfig {
	return map[string]CategoryConfig{
		CategoryComplaintSubmit: {
			MaxRequests: 5,
			Window:      time.Minute,
			Description: "Complaint submission rate limit",
		},
		CategoryCommentPost: {
			MaxRequests: 10,
			Window:      time.Minute,
			Description: "Comment posting rate limit",
		},
		CategoryChatMessage: {
			MaxRequests: 20,
			Window:      time.Minute,
			Description: "Chat message rate limit",
		},
		CategoryAPIGeneral: {
			MaxRequests: 50,
			Window:      time.Minute,
			Description: "General API rate limit",
		},
		CategoryVote: {
			MaxRequests: 30,
			Window:      time.Minute,
			Description: "Vote rate limit",
		},
	}
}
