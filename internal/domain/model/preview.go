package model

import "time"

// Reviewer pairs a reviewer identity with its state on a pull request.
type Reviewer struct {
	Login string
	State ReviewerState
}

// PreviewMetadata is the per-item enrichment snapshot. Absence of a snapshot
// means "not yet enriched or enrichment failed"; consumers must render that
// as unavailable, never as zero.
//
// Invariant: CompletedReviewers has at most one entry per reviewer login.
type PreviewMetadata struct {
	Additions          int
	Deletions          int
	ChangedFiles       int
	RequestedReviewers []Reviewer
	CompletedReviewers []Reviewer
	CIStatus           CIStatus
	MergeStatus        MergeStatus
	TotalComments      int // Issue comments + inline review comments.
}

// PullRequestDetail is the core detail record fetched per item before the
// dependent sub-fetches. HeadSHA keys the check-run fetch.
type PullRequestDetail struct {
	Additions          int
	Deletions          int
	ChangedFiles       int
	RequestedReviewers []string
	MergeStatus        MergeStatus
	HeadSHA            string
	IssueComments      int
}

// Review is one submitted review on a pull request.
type Review struct {
	Reviewer    string
	State       ReviewerState
	SubmittedAt time.Time // Zero when GitHub reports no submission time.
}

// ReviewComment is one inline code comment on a pull request.
type ReviewComment struct {
	Author    string
	Body      string
	CreatedAt time.Time
}

// CheckRun is one CI check run on a commit.
type CheckRun struct {
	Name       string
	Status     string // queued, in_progress, completed, waiting, requested, pending.
	Conclusion string // success, failure, neutral, canceled, skipped, timed_out, action_required.
}
