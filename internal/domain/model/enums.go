package model

// CIStatus is the aggregated check-run state for a pull request's head commit.
type CIStatus string

const (
	CIStatusUnknown CIStatus = "unknown"
	CIStatusPending CIStatus = "pending"
	CIStatusPassing CIStatus = "passing"
	CIStatusFailing CIStatus = "failing"
)

// MergeStatus reflects GitHub's tri-state mergeable flag.
type MergeStatus string

const (
	MergeStatusUnknown     MergeStatus = "unknown"
	MergeStatusMergeable   MergeStatus = "mergeable"
	MergeStatusConflicting MergeStatus = "conflicting"
)

// ReviewerState is the state of a reviewer on a pull request.
type ReviewerState string

const (
	ReviewerStateRequested        ReviewerState = "requested"
	ReviewerStateApproved         ReviewerState = "approved"
	ReviewerStateChangesRequested ReviewerState = "changes_requested"
	ReviewerStateCommented        ReviewerState = "commented"
	ReviewerStateDismissed        ReviewerState = "dismissed"
	ReviewerStatePending          ReviewerState = "pending"
)

// IsCompleted reports whether the state counts as a completed review.
// Pending reviews (drafted but not submitted) are excluded from the
// completed-reviewer reduction.
func (s ReviewerState) IsCompleted() bool {
	switch s {
	case ReviewerStateApproved, ReviewerStateChangesRequested, ReviewerStateCommented, ReviewerStateDismissed:
		return true
	}
	return false
}
