package shared

const (
	UserID   = "user_id"
	UserRole = "user_role"

	RoleCitizen  = "citizen"
	RoleOfficial = "official"

	ComplaintStatusOpen       = "open"
	ComplaintStatusInProgress = "in_progress"
	ComplaintStatusResolved   = "resolved"
	ComplaintStatusRejected   = "rejected"

	SubmissionTypeComplaint = "complaint"
	SubmissionTypeComment   = "comment"
	SubmissionTypeChat      = "chat"

	TokenReasonComplaintFiled    = "complaint_filed"
	TokenReasonComplaintResolved = "complaint_resolved"
	TokenReasonCommentPosted     = "comment_posted"
)
