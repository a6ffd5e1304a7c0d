package application

import (
	"context"
	"sync"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
	"github.com/ericfisherdev/reviewdeck/internal/domain/port/driven"
)

// fakeGitHubClient implements driven.GitHubClient with overridable behavior
// per method. Unset methods return zero values.
type fakeGitHubClient struct {
	fetchIdentity       func(ctx context.Context) (string, error)
	fetchTeams          func(ctx context.Context) ([]model.Team, error)
	search              func(ctx context.Context, query string) ([]model.PullRequestItem, error)
	fetchDetail         func(ctx context.Context, owner, repo string, number int) (*model.PullRequestDetail, error)
	fetchReviews        func(ctx context.Context, owner, repo string, number int) ([]model.Review, error)
	fetchReviewComments func(ctx context.Context, owner, repo string, number int) ([]model.ReviewComment, error)
	fetchCheckRuns      func(ctx context.Context, owner, repo, ref string) ([]model.CheckRun, error)
}

var _ driven.GitHubClient = (*fakeGitHubClient)(nil)

func (f *fakeGitHubClient) FetchIdentity(ctx context.Context) (string, error) {
	if f.fetchIdentity == nil {
		return "testuser", nil
	}
	return f.fetchIdentity(ctx)
}

func (f *fakeGitHubClient) FetchTeams(ctx context.Context) ([]model.Team, error) {
	if f.fetchTeams == nil {
		return nil, nil
	}
	return f.fetchTeams(ctx)
}

func (f *fakeGitHubClient) Search(ctx context.Context, query string) ([]model.PullRequestItem, error) {
	if f.search == nil {
		return nil, nil
	}
	return f.search(ctx, query)
}

func (f *fakeGitHubClient) FetchDetail(ctx context.Context, owner, repo string, number int) (*model.PullRequestDetail, error) {
	if f.fetchDetail == nil {
		return &model.PullRequestDetail{}, nil
	}
	return f.fetchDetail(ctx, owner, repo, number)
}

func (f *fakeGitHubClient) FetchReviews(ctx context.Context, owner, repo string, number int) ([]model.Review, error) {
	if f.fetchReviews == nil {
		return nil, nil
	}
	return f.fetchReviews(ctx, owner, repo, number)
}

func (f *fakeGitHubClient) FetchReviewComments(ctx context.Context, owner, repo string, number int) ([]model.ReviewComment, error) {
	if f.fetchReviewComments == nil {
		return nil, nil
	}
	return f.fetchReviewComments(ctx, owner, repo, number)
}

func (f *fakeGitHubClient) FetchCheckRuns(ctx context.Context, owner, repo, ref string) ([]model.CheckRun, error) {
	if f.fetchCheckRuns == nil {
		return nil, nil
	}
	return f.fetchCheckRuns(ctx, owner, repo, ref)
}

// fakeConfigStore records saved configurations in memory.
type fakeConfigStore struct {
	mu      sync.Mutex
	saved   []model.FilterConfiguration
	loaded  *model.FilterConfiguration
	saveErr error
	loadErr error
}

var _ driven.FilterConfigStore = (*fakeConfigStore)(nil)

func (f *fakeConfigStore) Save(ctx context.Context, cfg model.FilterConfiguration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, cfg)
	return nil
}

func (f *fakeConfigStore) Load(ctx context.Context) (*model.FilterConfiguration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.loaded, nil
}

func (f *fakeConfigStore) savedConfigs() []model.FilterConfiguration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.FilterConfiguration, len(f.saved))
	copy(out, f.saved)
	return out
}
