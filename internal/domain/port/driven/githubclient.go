// Package driven declares the ports the application depends on.
package driven

import (
	"context"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
)

// GitHubClient defines the driven port for the upstream API. All methods are
// read-only; failures are classified into model.APIError by the adapter.
type GitHubClient interface {
	// FetchIdentity resolves the authenticated user's login.
	FetchIdentity(ctx context.Context) (string, error)
	// FetchTeams lists the teams the authenticated user belongs to, including
	// the repositories each team can review.
	FetchTeams(ctx context.Context) ([]model.Team, error)
	// Search runs one issue-search query and returns the matching pull
	// requests. A single page of results is returned; the caller does not
	// paginate further.
	Search(ctx context.Context, query string) ([]model.PullRequestItem, error)
	// FetchDetail returns the core detail record for one pull request.
	FetchDetail(ctx context.Context, owner, repo string, number int) (*model.PullRequestDetail, error)
	// FetchReviews returns all submitted reviews for one pull request.
	FetchReviews(ctx context.Context, owner, repo string, number int) ([]model.Review, error)
	// FetchReviewComments returns the inline code comments for one pull request.
	FetchReviewComments(ctx context.Context, owner, repo string, number int) ([]model.ReviewComment, error)
	// FetchCheckRuns returns the check runs for the given ref (commit SHA).
	FetchCheckRuns(ctx context.Context, owner, repo, ref string) ([]model.CheckRun, error)
}
