package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
	"github.com/ericfisherdev/reviewdeck/internal/domain/port/driven"
)

// PresentedItem pairs a working-set item with its enrichment snapshot.
// Metadata is nil until enrichment for the item succeeds; consumers render
// that as unavailable, never as zero.
type PresentedItem struct {
	Item     model.PullRequestItem
	Metadata *model.PreviewMetadata
}

// ReviewService owns the working set. It coordinates reload, background
// enrichment, and roster loading, and produces the filtered, ranked view the
// presentation layer consumes. The item list is replaced wholesale on reload;
// enrichment snapshots merge at a single barrier and are discarded when a
// newer reload has superseded their generation.
type ReviewService struct {
	client          driven.GitHubClient
	aggregator      *Aggregator
	enricher        *Enricher
	state           *FilterState
	refreshInterval time.Duration

	mu         sync.RWMutex
	items      []model.PullRequestItem
	metadata   map[string]*model.PreviewMetadata
	generation uint64
	enriching  bool
}

// NewReviewService creates the service. refreshInterval <= 0 disables the
// periodic refresh loop; reloads then happen only through user intents.
func NewReviewService(client driven.GitHubClient, state *FilterState, refreshInterval time.Duration) *ReviewService {
	return &ReviewService{
		client:          client,
		aggregator:      NewAggregator(client),
		enricher:        NewEnricher(client),
		state:           state,
		refreshInterval: refreshInterval,
		metadata:        map[string]*model.PreviewMetadata{},
	}
}

// Start runs an immediate reload and then, when a refresh interval is
// configured, reloads on that interval until the context is canceled.
// Scheduled reload failures are logged, not retried; retry is a user intent.
func (s *ReviewService) Start(ctx context.Context) {
	if err := s.Reload(ctx); err != nil {
		slog.Error("initial reload failed", "error", err)
	}

	if s.refreshInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("review service stopped")
			return
		case <-ticker.C:
			if err := s.Reload(ctx); err != nil {
				slog.Error("scheduled reload failed", "error", err)
			}
		}
	}
}

// Reload rebuilds the working set. An aggregation failure is returned to the
// caller carrying its classified kind, for user-facing display and retry. On
// success the previous item set is replaced, in-flight enrichment for it is
// superseded, and enrichment plus roster loading continue in the background.
func (s *ReviewService) Reload(ctx context.Context) error {
	items, err := s.aggregator.Aggregate(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.items = items
	s.metadata = map[string]*model.PreviewMetadata{}
	s.enriching = len(items) > 0
	s.mu.Unlock()

	// Background work outlives the triggering request.
	bg := context.WithoutCancel(ctx)
	go s.enrich(bg, gen, items)
	go s.state.LoadRoster(bg, s.client)

	return nil
}

// enrich runs the enrichment fan-out for one reload generation and merges
// the snapshots at a single barrier. Results for a superseded generation are
// discarded, not merged: their items may no longer be present.
func (s *ReviewService) enrich(ctx context.Context, gen uint64, items []model.PullRequestItem) {
	snapshots := s.enricher.EnrichAll(ctx, items)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		slog.Debug("discarding stale enrichment results", "generation", gen, "current", s.generation)
		return
	}

	s.metadata = snapshots
	s.enriching = false

	slog.Info("enrichment complete", "items", len(items), "enriched", len(snapshots))
}

// Presented returns the filtered, ranked subset of the working set with
// enrichment snapshots attached, along with the enrichment-in-progress flag
// and the current advisory message.
func (s *ReviewService) Presented() ([]PresentedItem, bool, string) {
	cfg := s.state.Configuration()
	_, debounced := s.state.Query()
	roster := s.state.Roster()

	s.mu.RLock()
	items := s.items
	metadata := s.metadata
	enriching := s.enriching
	s.mu.RUnlock()

	visible := ApplyFilters(cfg, debounced, items, roster.Teams)

	out := make([]PresentedItem, 0, len(visible))
	for _, item := range visible {
		out = append(out, PresentedItem{Item: item, Metadata: metadata[item.Key()]})
	}

	return out, enriching, s.state.Advisory()
}

// FilterMetadata derives the filter choice lists from the current working set
// and the roster state.
func (s *ReviewService) FilterMetadata() model.FilterMetadata {
	s.mu.RLock()
	items := s.items
	s.mu.RUnlock()

	return BuildFilterMetadata(items, s.state.Roster())
}

// State exposes the reactive filter/search state for intent handlers.
func (s *ReviewService) State() *FilterState {
	return s.state
}
