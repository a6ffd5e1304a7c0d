package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
	"github.com/ericfisherdev/reviewdeck/internal/domain/port/driven"
)

// Aggregator builds the canonical working set: it resolves the identity,
// plans the search queries, fans them out concurrently, and merges the
// results into a deduplicated, recency-sorted list.
type Aggregator struct {
	client driven.GitHubClient
}

// NewAggregator creates an Aggregator backed by the given client.
func NewAggregator(client driven.GitHubClient) *Aggregator {
	return &Aggregator{client: client}
}

// Aggregate produces the working set. Identity resolution failure and any
// search query failure abort the whole operation; team resolution failure is
// absorbed and aggregation proceeds with zero team queries. The asymmetry is
// intentional: teams only widen the scope, while a failed search query means
// the working set itself would be untrustworthy.
func (a *Aggregator) Aggregate(ctx context.Context) ([]model.PullRequestItem, error) {
	login, err := a.client.FetchIdentity(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving identity: %w", err)
	}

	teams, err := a.client.FetchTeams(ctx)
	if err != nil {
		slog.Warn("team resolution failed, continuing without team queries", "error", err)
		teams = nil
	}

	queries := PlanQueries(login, teams)

	results := make([][]model.PullRequestItem, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, query := range queries {
		g.Go(func() error {
			items, err := a.client.Search(gctx, query)
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregating pull requests: %w", err)
	}

	merged := MergeResults(results)

	slog.Info("aggregation complete",
		"login", login,
		"queries", len(queries),
		"items", len(merged),
	)

	return merged, nil
}

// MergeResults concatenates the per-query result sets, deduplicates by
// identity key (first occurrence in merge order wins; overlapping queries
// return identical data for the same key), and sorts by last-updated
// timestamp descending. The ordering is the contract the presentation layer
// depends on for "most recently active first".
func MergeResults(results [][]model.PullRequestItem) []model.PullRequestItem {
	seen := make(map[string]bool)
	merged := make([]model.PullRequestItem, 0)

	for _, items := range results {
		for _, item := range items {
			if seen[item.Key()] {
				continue
			}
			seen[item.Key()] = true
			merged = append(merged, item)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].UpdatedAt.After(merged[j].UpdatedAt)
	})

	return merged
}
