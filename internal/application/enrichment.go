package application

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
	"github.com/ericfisherdev/reviewdeck/internal/domain/port/driven"
)

// defaultEnrichLimit bounds how many items are enriched concurrently so a
// large working set does not open hundreds of simultaneous API calls.
const defaultEnrichLimit = 8

// Enricher attaches PreviewMetadata snapshots to working-set items. It never
// fails as a whole: the detail fetch gates an item's snapshot, and each of
// the three dependent sub-fetches degrades only its own fields.
type Enricher struct {
	client driven.GitHubClient
	limit  int64
}

// NewEnricher creates an Enricher with the default concurrency bound.
func NewEnricher(client driven.GitHubClient) *Enricher {
	return &Enricher{client: client, limit: defaultEnrichLimit}
}

// EnrichAll fans the enrichment pipeline out across all items and returns
// snapshots keyed by item identity. Items whose detail fetch failed have no
// entry. A slow or failing item never blocks the others.
func (e *Enricher) EnrichAll(ctx context.Context, items []model.PullRequestItem) map[string]*model.PreviewMetadata {
	sem := semaphore.NewWeighted(e.limit)
	out := make(map[string]*model.PreviewMetadata, len(items))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			meta := e.EnrichItem(ctx, item)
			if meta == nil {
				return
			}

			mu.Lock()
			out[item.Key()] = meta
			mu.Unlock()
		}()
	}
	wg.Wait()

	return out
}

// EnrichItem runs the pipeline for a single item. The detail fetch comes
// first because the dependent sub-fetches need its head commit reference; its
// failure leaves the whole item unenriched (nil). On success the reviews,
// review comments, and check runs fetch concurrently, each isolated:
//
//   - reviews failure: completed-reviewer list stays empty
//   - review-comments failure: comment total counts issue comments only
//   - check-runs failure: CI status stays unknown
func (e *Enricher) EnrichItem(ctx context.Context, item model.PullRequestItem) *model.PreviewMetadata {
	detail, err := e.client.FetchDetail(ctx, item.Owner, item.Repo, item.Number)
	if err != nil {
		slog.Warn("detail fetch failed, leaving item unenriched", "item", item.Key(), "error", err)
		return nil
	}

	var (
		wg             sync.WaitGroup
		completed      []model.Reviewer
		reviewComments int
		ciStatus       = model.CIStatusUnknown
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		reviews, err := e.client.FetchReviews(ctx, item.Owner, item.Repo, item.Number)
		if err != nil {
			slog.Warn("review fetch failed", "item", item.Key(), "error", err)
			return
		}
		completed = ReduceReviews(reviews)
	}()
	go func() {
		defer wg.Done()
		comments, err := e.client.FetchReviewComments(ctx, item.Owner, item.Repo, item.Number)
		if err != nil {
			slog.Warn("review comment fetch failed", "item", item.Key(), "error", err)
			return
		}
		reviewComments = len(comments)
	}()
	go func() {
		defer wg.Done()
		runs, err := e.client.FetchCheckRuns(ctx, item.Owner, item.Repo, detail.HeadSHA)
		if err != nil {
			slog.Warn("check run fetch failed", "item", item.Key(), "error", err)
			return
		}
		ciStatus = AggregateCheckStatus(runs)
	}()
	wg.Wait()

	requested := make([]model.Reviewer, 0, len(detail.RequestedReviewers))
	for _, login := range detail.RequestedReviewers {
		requested = append(requested, model.Reviewer{Login: login, State: model.ReviewerStateRequested})
	}

	return &model.PreviewMetadata{
		Additions:          detail.Additions,
		Deletions:          detail.Deletions,
		ChangedFiles:       detail.ChangedFiles,
		RequestedReviewers: requested,
		CompletedReviewers: completed,
		CIStatus:           ciStatus,
		MergeStatus:        detail.MergeStatus,
		TotalComments:      detail.IssueComments + reviewComments,
	}
}

// ReduceReviews collapses raw reviews to at most one completed entry per
// reviewer, keeping the latest submission. An entry without a submission time
// never replaces one that has a time; between two timestamped entries the
// later one wins. Pending (unsubmitted) reviews are ignored. Output is sorted
// by login for deterministic presentation.
func ReduceReviews(reviews []model.Review) []model.Reviewer {
	latest := make(map[string]model.Review)
	for _, r := range reviews {
		if !r.State.IsCompleted() {
			continue
		}
		current, ok := latest[r.Reviewer]
		if !ok || laterReview(r, current) {
			latest[r.Reviewer] = r
		}
	}

	out := make([]model.Reviewer, 0, len(latest))
	for _, r := range latest {
		out = append(out, model.Reviewer{Login: r.Reviewer, State: r.State})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Login < out[j].Login })

	return out
}

// laterReview reports whether candidate should replace current in the
// per-reviewer reduction.
func laterReview(candidate, current model.Review) bool {
	if candidate.SubmittedAt.IsZero() {
		return false
	}
	if current.SubmittedAt.IsZero() {
		return true
	}
	return candidate.SubmittedAt.After(current.SubmittedAt)
}

// AggregateCheckStatus folds check runs into a single CI status: no runs is
// unknown; any failed, timed-out, or action-required run is failing; any run
// still in flight is pending; otherwise passing.
func AggregateCheckStatus(runs []model.CheckRun) model.CIStatus {
	if len(runs) == 0 {
		return model.CIStatusUnknown
	}

	anyPending := false
	for _, run := range runs {
		switch run.Conclusion {
		case "failure", "timed_out", "action_required":
			return model.CIStatusFailing
		}
		if run.Status != "completed" {
			anyPending = true
		}
	}

	if anyPending {
		return model.CIStatusPending
	}
	return model.CIStatusPassing
}
