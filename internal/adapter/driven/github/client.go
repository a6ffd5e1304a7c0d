// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
	"github.com/ericfisherdev/reviewdeck/internal/domain/port/driven"
)

// searchPageSize is the single page requested per search query. Aggregation
// deliberately does not paginate search results.
const searchPageSize = 100

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchIdentity resolves the authenticated user's login.
func (c *Client) FetchIdentity(ctx context.Context) (string, error) {
	user, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("fetching authenticated user: %w", classify(err))
	}

	logRateLimit(resp, "user", 0, 1)

	login := user.GetLogin()
	if login == "" {
		return "", fmt.Errorf("fetching authenticated user: %w",
			&model.APIError{Kind: model.ErrorMalformed, Err: fmt.Errorf("empty login in response")})
	}

	return login, nil
}

// FetchTeams lists the authenticated user's teams with the repositories each
// can review. A failure listing one team's repositories degrades that team to
// an empty repository set instead of failing the whole listing.
func (c *Client) FetchTeams(ctx context.Context) ([]model.Team, error) {
	opts := &gh.ListOptions{PerPage: 100}
	var allTeams []model.Team

	for {
		teams, resp, err := c.gh.Teams.ListUserTeams(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("listing user teams (page %d): %w", opts.Page, classify(err))
		}

		logRateLimit(resp, "user/teams", opts.Page, len(teams))

		for _, t := range teams {
			team := model.Team{
				Slug:         t.GetSlug(),
				Name:         t.GetName(),
				Organization: t.GetOrganization().GetLogin(),
			}

			repos, err := c.fetchTeamRepos(ctx, team.Organization, team.Slug)
			if err != nil {
				slog.Warn("listing team repositories failed",
					"team", team.Key(),
					"error", err,
				)
			} else {
				team.Repositories = repos
			}

			allTeams = append(allTeams, team)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allTeams, nil
}

// fetchTeamRepos lists the full names of repositories a team can review.
func (c *Client) fetchTeamRepos(ctx context.Context, org, slug string) ([]string, error) {
	opts := &gh.ListOptions{PerPage: 100}
	var names []string

	for {
		repos, resp, err := c.gh.Teams.ListTeamReposBySlug(ctx, org, slug, opts)
		if err != nil {
			return nil, fmt.Errorf("listing repos for team %s/%s (page %d): %w", org, slug, opts.Page, classify(err))
		}

		logRateLimit(resp, org+"/"+slug+"/repos", opts.Page, len(repos))

		for _, r := range repos {
			names = append(names, r.GetFullName())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return names, nil
}

// Search runs one issue-search query and maps the resulting pull requests.
// Only the first page is fetched.
func (c *Client) Search(ctx context.Context, query string) ([]model.PullRequestItem, error) {
	opts := &gh.SearchOptions{
		Sort:        "updated",
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: searchPageSize},
	}

	result, resp, err := c.gh.Search.Issues(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, classify(err))
	}

	logRateLimit(resp, "search/issues", 0, len(result.Issues))

	items := make([]model.PullRequestItem, 0, len(result.Issues))
	for _, issue := range result.Issues {
		item, err := mapSearchIssue(issue)
		if err != nil {
			slog.Warn("skipping unmappable search result", "query", query, "error", err)
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

// FetchDetail returns the core detail record for one pull request.
func (c *Client) FetchDetail(ctx context.Context, owner, repo string, number int) (*model.PullRequestDetail, error) {
	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("fetching detail for %s/%s#%d: %w", owner, repo, number, classify(err))
	}

	logRateLimit(resp, owner+"/"+repo+"/pr-detail", 0, 1)

	reviewers := make([]string, 0, len(pr.RequestedReviewers))
	for _, r := range pr.RequestedReviewers {
		reviewers = append(reviewers, r.GetLogin())
	}

	return &model.PullRequestDetail{
		Additions:          pr.GetAdditions(),
		Deletions:          pr.GetDeletions(),
		ChangedFiles:       pr.GetChangedFiles(),
		RequestedReviewers: reviewers,
		MergeStatus:        mapMergeable(pr.Mergeable),
		HeadSHA:            pr.GetHead().GetSHA(),
		IssueComments:      pr.GetComments(),
	}, nil
}

// FetchReviews retrieves all reviews for a pull request.
// It handles pagination automatically and maps go-github types to domain model types.
func (c *Client) FetchReviews(ctx context.Context, owner, repo string, number int) ([]model.Review, error) {
	opts := &gh.ListOptions{PerPage: 100}
	var allReviews []model.Review

	for {
		reviews, resp, err := c.gh.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing reviews for %s/%s#%d (page %d): %w", owner, repo, number, opts.Page, classify(err))
		}

		logRateLimit(resp, owner+"/"+repo+"/reviews", opts.Page, len(reviews))

		for _, r := range reviews {
			allReviews = append(allReviews, mapReview(r))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allReviews, nil
}

// FetchReviewComments retrieves all review comments (inline code comments) for a pull request.
// It handles pagination automatically and maps go-github types to domain model types.
func (c *Client) FetchReviewComments(ctx context.Context, owner, repo string, number int) ([]model.ReviewComment, error) {
	opts := &gh.PullRequestListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	var allComments []model.ReviewComment

	for {
		comments, resp, err := c.gh.PullRequests.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing review comments for %s/%s#%d (page %d): %w", owner, repo, number, opts.Page, classify(err))
		}

		logRateLimit(resp, owner+"/"+repo+"/review-comments", opts.Page, len(comments))

		for _, comment := range comments {
			allComments = append(allComments, model.ReviewComment{
				Author:    comment.GetUser().GetLogin(),
				Body:      comment.GetBody(),
				CreatedAt: comment.GetCreatedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allComments, nil
}

// FetchCheckRuns retrieves all check runs for the given ref (commit SHA).
// It handles pagination automatically and maps go-github types to domain model types.
func (c *Client) FetchCheckRuns(ctx context.Context, owner, repo, ref string) ([]model.CheckRun, error) {
	opts := &gh.ListCheckRunsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var allRuns []model.CheckRun

	for {
		result, resp, err := c.gh.Checks.ListCheckRunsForRef(ctx, owner, repo, ref, opts)
		if err != nil {
			return nil, fmt.Errorf("listing check runs for %s/%s@%s (page %d): %w", owner, repo, ref, opts.Page, classify(err))
		}

		logRateLimit(resp, owner+"/"+repo+"/check-runs", opts.Page, len(result.CheckRuns))

		for _, cr := range result.CheckRuns {
			allRuns = append(allRuns, model.CheckRun{
				Name:       cr.GetName(),
				Status:     cr.GetStatus(),
				Conclusion: cr.GetConclusion(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRuns, nil
}

// mapSearchIssue converts a search result issue into a PullRequestItem.
// The repository owner and name are derived from the issue's repository URL,
// since the search API does not embed a repository object.
func mapSearchIssue(issue *gh.Issue) (model.PullRequestItem, error) {
	owner, repo, err := splitRepositoryURL(issue.GetRepositoryURL())
	if err != nil {
		return model.PullRequestItem{}, err
	}

	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}

	return model.PullRequestItem{
		Owner:         owner,
		Repo:          repo,
		Number:        issue.GetNumber(),
		Title:         issue.GetTitle(),
		Author:        issue.GetUser().GetLogin(),
		UpdatedAt:     issue.GetUpdatedAt().Time,
		URL:           issue.GetHTMLURL(),
		IssueComments: issue.GetComments(),
		Labels:        labels,
	}, nil
}

// mapReview converts a go-github PullRequestReview to a domain model Review.
func mapReview(r *gh.PullRequestReview) model.Review {
	return model.Review{
		Reviewer:    r.GetUser().GetLogin(),
		State:       model.ReviewerState(strings.ToLower(r.GetState())),
		SubmittedAt: r.GetSubmittedAt().Time,
	}
}

// mapMergeable converts a *bool (GitHub's tri-state mergeable field) to a MergeStatus.
// nil means GitHub hasn't computed it yet; true means mergeable; false means conflicted.
func mapMergeable(mergeable *bool) model.MergeStatus {
	if mergeable == nil {
		return model.MergeStatusUnknown
	}
	if *mergeable {
		return model.MergeStatusMergeable
	}
	return model.MergeStatusConflicting
}

// splitRepositoryURL extracts "owner" and "repo" from an API repository URL
// such as "https://api.github.com/repos/owner/repo".
func splitRepositoryURL(repositoryURL string) (string, string, error) {
	u, err := url.Parse(repositoryURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid repository URL %q: %w", repositoryURL, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[len(parts)-3] != "repos" || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", "", fmt.Errorf("invalid repository URL %q: expected .../repos/{owner}/{repo}", repositoryURL)
	}

	return parts[len(parts)-2], parts[len(parts)-1], nil
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
