package model

import "slices"

// FilterConfiguration is the persisted filter selection. It is an immutable
// value replaced wholesale on every update so persistence stays atomic; an
// empty set on any dimension means no restriction on that dimension.
type FilterConfiguration struct {
	Organizations []string
	Repositories  []string // Full names ("owner/repo").
	Teams         []string // Bare team slugs.
}

// IsEmpty reports whether no dimension restricts anything.
func (c FilterConfiguration) IsEmpty() bool {
	return len(c.Organizations) == 0 && len(c.Repositories) == 0 && len(c.Teams) == 0
}

// WithoutTeams returns a copy of the configuration with team selections
// stripped. Used when the team roster is unavailable.
func (c FilterConfiguration) WithoutTeams() FilterConfiguration {
	return FilterConfiguration{
		Organizations: slices.Clone(c.Organizations),
		Repositories:  slices.Clone(c.Repositories),
	}
}

// FilterMetadata is derived from the current working set (never persisted):
// the choice lists for the filter UI. Organizations and Repositories are
// sorted ascending; the team list carries its own loading state.
type FilterMetadata struct {
	Organizations []string
	Repositories  []string
	Teams         TeamRoster
}
