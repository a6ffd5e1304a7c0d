package application

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
)

func newTestService(client *fakeGitHubClient) *ReviewService {
	state := NewFilterState(&fakeConfigStore{}, testDebounce)
	return NewReviewService(client, state, 0)
}

func TestReviewService_ReloadPopulatesWorkingSet(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	client := &fakeGitHubClient{
		search: func(ctx context.Context, query string) ([]model.PullRequestItem, error) {
			return []model.PullRequestItem{
				itemAt("acme", "api", 1, base),
				itemAt("acme", "web", 2, base.Add(time.Hour)),
			}, nil
		},
	}
	svc := newTestService(client)

	require.NoError(t, svc.Reload(context.Background()))

	items, _, _ := svc.Presented()
	require.Len(t, items, 2)
	assert.Equal(t, "acme/web#2", items[0].Item.Key())
	assert.Equal(t, "acme/api#1", items[1].Item.Key())
}

func TestReviewService_ReloadReturnsClassifiedAggregationError(t *testing.T) {
	client := &fakeGitHubClient{
		fetchIdentity: func(ctx context.Context) (string, error) {
			return "", &model.APIError{Kind: model.ErrorRateLimited, Err: errors.New("slow down")}
		},
	}
	svc := newTestService(client)

	err := svc.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.ErrorRateLimited, model.KindOf(err))

	items, _, _ := svc.Presented()
	assert.Empty(t, items, "a failed reload must not touch the working set")
}

func TestReviewService_MetadataAttachedAfterEnrichment(t *testing.T) {
	client := &fakeGitHubClient{
		search: func(ctx context.Context, query string) ([]model.PullRequestItem, error) {
			return []model.PullRequestItem{itemAt("acme", "api", 1, time.Now())}, nil
		},
		fetchDetail: func(ctx context.Context, owner, repo string, number int) (*model.PullRequestDetail, error) {
			return &model.PullRequestDetail{Additions: 10}, nil
		},
	}
	svc := newTestService(client)

	require.NoError(t, svc.Reload(context.Background()))

	require.Eventually(t, func() bool {
		_, enriching, _ := svc.Presented()
		return !enriching
	}, time.Second, time.Millisecond)

	items, _, _ := svc.Presented()
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Metadata)
	assert.Equal(t, 10, items[0].Metadata.Additions)
}

func TestReviewService_FailedEnrichmentLeavesMetadataNil(t *testing.T) {
	client := &fakeGitHubClient{
		search: func(ctx context.Context, query string) ([]model.PullRequestItem, error) {
			return []model.PullRequestItem{itemAt("acme", "api", 1, time.Now())}, nil
		},
		fetchDetail: func(ctx context.Context, owner, repo string, number int) (*model.PullRequestDetail, error) {
			return nil, &model.APIError{Kind: model.ErrorServer, Err: errors.New("boom")}
		},
	}
	svc := newTestService(client)

	require.NoError(t, svc.Reload(context.Background()))

	require.Eventually(t, func() bool {
		_, enriching, _ := svc.Presented()
		return !enriching
	}, time.Second, time.Millisecond)

	items, _, _ := svc.Presented()
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Metadata)
}

func TestReviewService_PresentedAppliesDebouncedQuery(t *testing.T) {
	client := &fakeGitHubClient{
		search: func(ctx context.Context, query string) ([]model.PullRequestItem, error) {
			return []model.PullRequestItem{
				{Owner: "acme", Repo: "api", Number: 1, Title: "Fix bug", UpdatedAt: time.Now()},
				{Owner: "acme", Repo: "web", Number: 2, Title: "Add feature", UpdatedAt: time.Now()},
			}, nil
		},
	}
	svc := newTestService(client)
	require.NoError(t, svc.Reload(context.Background()))

	svc.State().SetQuery("Fix")

	// The immediate query has changed but the debounced one has not; the view
	// is still unfiltered.
	items, _, _ := svc.Presented()
	assert.Len(t, items, 2)

	require.Eventually(t, func() bool {
		filtered, _, _ := svc.Presented()
		return len(filtered) == 1
	}, time.Second, time.Millisecond)

	filtered, _, _ := svc.Presented()
	require.Len(t, filtered, 1)
	assert.Equal(t, "acme/api#1", filtered[0].Item.Key())
}

func TestReviewService_FilterMetadataReflectsWorkingSet(t *testing.T) {
	client := &fakeGitHubClient{
		search: func(ctx context.Context, query string) ([]model.PullRequestItem, error) {
			return []model.PullRequestItem{
				itemAt("zeta", "svc", 1, time.Now()),
				itemAt("acme", "api", 2, time.Now()),
			}, nil
		},
		fetchTeams: func(ctx context.Context) ([]model.Team, error) {
			return []model.Team{{Slug: "platform", Organization: "acme"}}, nil
		},
	}
	svc := newTestService(client)
	require.NoError(t, svc.Reload(context.Background()))

	require.Eventually(t, func() bool {
		return svc.State().Roster().Phase == model.RosterLoaded
	}, time.Second, time.Millisecond)

	meta := svc.FilterMetadata()
	assert.Equal(t, []string{"acme", "zeta"}, meta.Organizations)
	assert.Equal(t, []string{"acme/api", "zeta/svc"}, meta.Repositories)
	require.Len(t, meta.Teams.Teams, 1)
	assert.Equal(t, "acme/platform", meta.Teams.Teams[0].Key())
}

func TestReviewService_NewReloadSupersedesInFlightEnrichment(t *testing.T) {
	release := make(chan struct{})
	var reload atomic.Int64
	reload.Store(1)

	client := &fakeGitHubClient{
		search: func(ctx context.Context, query string) ([]model.PullRequestItem, error) {
			return []model.PullRequestItem{itemAt("acme", "api", int(reload.Load()), time.Now())}, nil
		},
		fetchDetail: func(ctx context.Context, owner, repo string, number int) (*model.PullRequestDetail, error) {
			// The first reload's enrichment stalls until released; the second
			// reload's completes immediately.
			if number == 1 {
				<-release
			}
			return &model.PullRequestDetail{Additions: number}, nil
		},
	}
	svc := newTestService(client)

	require.NoError(t, svc.Reload(context.Background()))
	reload.Store(2)
	require.NoError(t, svc.Reload(context.Background()))

	require.Eventually(t, func() bool {
		_, enriching, _ := svc.Presented()
		return !enriching
	}, time.Second, time.Millisecond)

	close(release)
	time.Sleep(20 * time.Millisecond) // Let the stale enrichment finish.

	items, _, _ := svc.Presented()
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Metadata)
	assert.Equal(t, 2, items[0].Metadata.Additions, "stale enrichment must not overwrite the newer generation")
}
