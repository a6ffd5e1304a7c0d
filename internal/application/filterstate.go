package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
	"github.com/ericfisherdev/reviewdeck/internal/domain/port/driven"
)

// DefaultDebounce is how long the free-text query must be stable before the
// debounced value is updated from the immediate one.
const DefaultDebounce = 300 * time.Millisecond

// AdvisoryTeamsUnavailable is the user-facing message set when team
// selections cannot be honored because the roster failed to load.
const AdvisoryTeamsUnavailable = "team filtering is unavailable"

// FilterState holds the reactive filter/search state: the keystroke-level
// query, the debounced query used for matching, the active filter
// configuration, and the team roster with its loading state. One cancellable
// delayed task per instance governs the debounce; superseding a pending timer
// cancels it outright, so no stale query value is ever applied.
type FilterState struct {
	mu       sync.Mutex
	store    driven.FilterConfigStore
	debounce time.Duration

	immediate string
	debounced string
	timer     *time.Timer
	querySeq  uint64

	config   model.FilterConfiguration
	roster   model.TeamRoster
	advisory string
}

// NewFilterState creates a FilterState persisting through store. A
// non-positive debounce falls back to DefaultDebounce.
func NewFilterState(store driven.FilterConfigStore, debounce time.Duration) *FilterState {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FilterState{
		store:    store,
		debounce: debounce,
		roster:   model.TeamRoster{Phase: model.RosterIdle},
	}
}

// Restore loads the persisted configuration. Called once at startup; a load
// failure or absent record leaves the default (unrestricted) configuration.
func (s *FilterState) Restore(ctx context.Context) {
	cfg, err := s.store.Load(ctx)
	if err != nil {
		slog.Warn("loading filter configuration failed", "error", err)
		return
	}
	if cfg == nil {
		return
	}

	s.mu.Lock()
	s.config = *cfg
	s.mu.Unlock()
}

// SetQuery updates the immediate query synchronously and schedules the
// debounced update. Each call cancels the pending timer and restarts it, so
// only the last value within the window is applied (last-write-wins).
func (s *FilterState) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.immediate = query
	s.querySeq++
	seq := s.querySeq

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A Stop can race a timer that already fired; the sequence check
		// keeps a superseded value from being applied.
		if s.querySeq != seq {
			return
		}
		s.debounced = query
	})
}

// ClearQuery resets both query values immediately, bypassing the debounce.
func (s *FilterState) ClearQuery() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.querySeq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.immediate = ""
	s.debounced = ""
}

// Query returns the immediate and debounced query values.
func (s *FilterState) Query() (immediate, debounced string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.immediate, s.debounced
}

// SetConfiguration replaces the active configuration wholesale and persists
// it. When the new configuration selects teams while the roster is in a
// failed state, the team selections are stripped and an advisory is set. The
// configuration actually applied is returned.
func (s *FilterState) SetConfiguration(ctx context.Context, cfg model.FilterConfiguration) model.FilterConfiguration {
	s.mu.Lock()
	if len(cfg.Teams) > 0 && s.roster.Phase == model.RosterFailed {
		cfg = cfg.WithoutTeams()
		s.advisory = AdvisoryTeamsUnavailable
	}
	s.config = cfg
	s.mu.Unlock()

	if err := s.store.Save(ctx, cfg); err != nil {
		slog.Warn("persisting filter configuration failed", "error", err)
	}

	return cfg
}

// ClearFilters resets the configuration to no restrictions, clears any
// advisory, and persists the empty configuration.
func (s *FilterState) ClearFilters(ctx context.Context) {
	s.mu.Lock()
	s.config = model.FilterConfiguration{}
	s.advisory = ""
	s.mu.Unlock()

	if err := s.store.Save(ctx, model.FilterConfiguration{}); err != nil {
		slog.Warn("persisting filter configuration failed", "error", err)
	}
}

// Configuration returns the active filter configuration.
func (s *FilterState) Configuration() model.FilterConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Roster returns the team roster with its loading state.
func (s *FilterState) Roster() model.TeamRoster {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster
}

// Advisory returns the current user-facing advisory message, empty when none.
func (s *FilterState) Advisory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advisory
}

// LoadRoster fetches the team roster to populate the filter choice list. It
// is fire-and-forget relative to the rest of the state: organizations and
// repositories derived from the working set stay available regardless. On
// failure the roster enters the failed phase and, if teams were already
// selected, that selection is cleared and the advisory set.
func (s *FilterState) LoadRoster(ctx context.Context, client driven.GitHubClient) {
	s.mu.Lock()
	s.roster.Phase = model.RosterLoading
	s.mu.Unlock()

	teams, err := client.FetchTeams(ctx)
	if err != nil {
		slog.Warn("team roster load failed", "error", err)

		s.mu.Lock()
		s.roster = model.TeamRoster{Phase: model.RosterFailed}
		var stripped *model.FilterConfiguration
		if len(s.config.Teams) > 0 {
			cfg := s.config.WithoutTeams()
			s.config = cfg
			s.advisory = AdvisoryTeamsUnavailable
			stripped = &cfg
		}
		s.mu.Unlock()

		if stripped != nil {
			if err := s.store.Save(ctx, *stripped); err != nil {
				slog.Warn("persisting filter configuration failed", "error", err)
			}
		}
		return
	}

	s.mu.Lock()
	s.roster = model.TeamRoster{Phase: model.RosterLoaded, Teams: DedupeTeams(teams)}
	s.mu.Unlock()
}
