package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
)

const testDebounce = 20 * time.Millisecond

func debouncedValue(s *FilterState) func() string {
	return func() string {
		_, debounced := s.Query()
		return debounced
	}
}

func TestFilterState_SetQueryDebounces(t *testing.T) {
	s := NewFilterState(&fakeConfigStore{}, testDebounce)

	s.SetQuery("fix")

	immediate, debounced := s.Query()
	assert.Equal(t, "fix", immediate)
	assert.Empty(t, debounced, "debounced value must not update before the window elapses")

	require.Eventually(t, func() bool {
		return debouncedValue(s)() == "fix"
	}, time.Second, time.Millisecond)
}

func TestFilterState_RapidUpdatesApplyOnlyLastValue(t *testing.T) {
	s := NewFilterState(&fakeConfigStore{}, testDebounce)

	s.SetQuery("f")
	s.SetQuery("fi")
	s.SetQuery("fix")

	require.Eventually(t, func() bool {
		return debouncedValue(s)() == "fix"
	}, time.Second, time.Millisecond)

	// Give any superseded timers a chance to misbehave.
	time.Sleep(2 * testDebounce)
	_, debounced := s.Query()
	assert.Equal(t, "fix", debounced)
}

func TestFilterState_ClearQueryBypassesDebounce(t *testing.T) {
	s := NewFilterState(&fakeConfigStore{}, testDebounce)

	s.SetQuery("fix")
	require.Eventually(t, func() bool {
		return debouncedValue(s)() == "fix"
	}, time.Second, time.Millisecond)

	s.SetQuery("fixx")
	s.ClearQuery()

	immediate, debounced := s.Query()
	assert.Empty(t, immediate)
	assert.Empty(t, debounced)

	// The pending "fixx" timer must not resurrect the query.
	time.Sleep(2 * testDebounce)
	_, debounced = s.Query()
	assert.Empty(t, debounced)
}

func TestFilterState_RestoreLoadsPersistedConfiguration(t *testing.T) {
	store := &fakeConfigStore{
		loaded: &model.FilterConfiguration{Organizations: []string{"acme"}},
	}
	s := NewFilterState(store, testDebounce)

	s.Restore(context.Background())

	assert.Equal(t, []string{"acme"}, s.Configuration().Organizations)
}

func TestFilterState_RestoreToleratesLoadFailure(t *testing.T) {
	store := &fakeConfigStore{loadErr: errors.New("db locked")}
	s := NewFilterState(store, testDebounce)

	s.Restore(context.Background())

	assert.True(t, s.Configuration().IsEmpty())
}

func TestFilterState_SetConfigurationPersists(t *testing.T) {
	store := &fakeConfigStore{}
	s := NewFilterState(store, testDebounce)

	cfg := model.FilterConfiguration{Organizations: []string{"acme"}, Teams: []string{"platform"}}
	applied := s.SetConfiguration(context.Background(), cfg)

	assert.Equal(t, cfg, applied)
	assert.Equal(t, cfg, s.Configuration())
	require.Len(t, store.savedConfigs(), 1)
	assert.Equal(t, cfg, store.savedConfigs()[0])
}

func TestFilterState_SetConfigurationStripsTeamsWhenRosterFailed(t *testing.T) {
	store := &fakeConfigStore{}
	s := NewFilterState(store, testDebounce)

	client := &fakeGitHubClient{
		fetchTeams: func(ctx context.Context) ([]model.Team, error) {
			return nil, errors.New("teams unavailable")
		},
	}
	s.LoadRoster(context.Background(), client)
	require.Equal(t, model.RosterFailed, s.Roster().Phase)

	applied := s.SetConfiguration(context.Background(), model.FilterConfiguration{
		Organizations: []string{"acme"},
		Teams:         []string{"platform"},
	})

	assert.Empty(t, applied.Teams)
	assert.Equal(t, []string{"acme"}, applied.Organizations)
	assert.Equal(t, AdvisoryTeamsUnavailable, s.Advisory())
}

func TestFilterState_ClearFiltersResetsEverything(t *testing.T) {
	store := &fakeConfigStore{}
	s := NewFilterState(store, testDebounce)
	s.SetConfiguration(context.Background(), model.FilterConfiguration{Organizations: []string{"acme"}})

	s.ClearFilters(context.Background())

	assert.True(t, s.Configuration().IsEmpty())
	assert.Empty(t, s.Advisory())
	saved := store.savedConfigs()
	require.Len(t, saved, 2)
	assert.True(t, saved[1].IsEmpty())
}

func TestFilterState_LoadRosterSuccess(t *testing.T) {
	s := NewFilterState(&fakeConfigStore{}, testDebounce)
	client := &fakeGitHubClient{
		fetchTeams: func(ctx context.Context) ([]model.Team, error) {
			return []model.Team{
				{Slug: "platform", Organization: "acme"},
				{Slug: "platform", Organization: "acme"},
			}, nil
		},
	}

	s.LoadRoster(context.Background(), client)

	roster := s.Roster()
	assert.Equal(t, model.RosterLoaded, roster.Phase)
	assert.Len(t, roster.Teams, 1)
}

func TestFilterState_LoadRosterFailureStripsActiveTeamSelection(t *testing.T) {
	store := &fakeConfigStore{}
	s := NewFilterState(store, testDebounce)
	s.SetConfiguration(context.Background(), model.FilterConfiguration{Teams: []string{"platform"}})

	client := &fakeGitHubClient{
		fetchTeams: func(ctx context.Context) ([]model.Team, error) {
			return nil, errors.New("teams unavailable")
		},
	}
	s.LoadRoster(context.Background(), client)

	assert.Equal(t, model.RosterFailed, s.Roster().Phase)
	assert.Empty(t, s.Configuration().Teams)
	assert.Equal(t, AdvisoryTeamsUnavailable, s.Advisory())

	// The stripped configuration is persisted on top of the original one.
	saved := store.savedConfigs()
	require.Len(t, saved, 2)
	assert.Empty(t, saved[1].Teams)
}
