package application

import (
	"sort"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
)

// ApplyFilters applies the structured filter configuration and then, for a
// non-empty query, pipes the survivors through the fuzzy matcher. The three
// structured predicates are AND-combined and each is vacuous when its
// selection set is empty. This is a pure function.
func ApplyFilters(cfg model.FilterConfiguration, query string, items []model.PullRequestItem, roster []model.Team) []model.PullRequestItem {
	orgs := toSet(cfg.Organizations)
	repos := toSet(cfg.Repositories)
	teamRepos, teamFilterActive := expandTeamRepos(cfg.Teams, roster)

	filtered := make([]model.PullRequestItem, 0, len(items))
	for _, item := range items {
		if len(orgs) > 0 && !orgs[item.Owner] {
			continue
		}
		if len(repos) > 0 && !repos[item.RepoFullName()] {
			continue
		}
		if teamFilterActive && !teamRepos[item.RepoFullName()] {
			continue
		}
		filtered = append(filtered, item)
	}

	if query == "" {
		return filtered
	}
	return MatchItems(query, filtered)
}

// expandTeamRepos expands the selected team slugs against the roster to the
// union of repository full names those teams can review. Matching keys teams
// by bare slug, so equal slugs across organizations both contribute. When
// slugs are selected but none resolve (empty roster or no match) the union is
// empty and no item passes; that is the documented degradation behavior.
func expandTeamRepos(slugs []string, roster []model.Team) (map[string]bool, bool) {
	if len(slugs) == 0 {
		return nil, false
	}

	selected := toSet(slugs)
	union := make(map[string]bool)
	for _, team := range roster {
		if !selected[team.Slug] {
			continue
		}
		for _, repo := range team.Repositories {
			union[repo] = true
		}
	}

	return union, true
}

// BuildFilterMetadata derives the filter choice lists from the working set:
// the organizations and repository full names actually present, sorted
// ascending, plus the team roster in its loading-state wrapper.
func BuildFilterMetadata(items []model.PullRequestItem, roster model.TeamRoster) model.FilterMetadata {
	orgSet := make(map[string]bool)
	repoSet := make(map[string]bool)
	for _, item := range items {
		orgSet[item.Owner] = true
		repoSet[item.RepoFullName()] = true
	}

	return model.FilterMetadata{
		Organizations: sortedKeys(orgSet),
		Repositories:  sortedKeys(repoSet),
		Teams:         roster,
	}
}

// DedupeTeams removes duplicate teams from a listing, keyed by
// organization/slug so same-slug teams from different organizations are both
// retained. First occurrence wins; order is preserved.
func DedupeTeams(teams []model.Team) []model.Team {
	seen := make(map[string]bool, len(teams))
	out := make([]model.Team, 0, len(teams))
	for _, team := range teams {
		if seen[team.Key()] {
			continue
		}
		seen[team.Key()] = true
		out = append(out, team)
	}
	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
