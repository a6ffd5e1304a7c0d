package model

// Team is an organization-scoped reviewer group.
type Team struct {
	Slug         string
	Name         string
	Organization string   // Owning organization login.
	Repositories []string // Full names ("owner/repo") the team can review.
}

// Key returns the cross-organization identity "organization/slug". Teams with
// equal slugs in different organizations are distinct in listings.
func (t Team) Key() string {
	return t.Organization + "/" + t.Slug
}

// RosterPhase is the loading state of the team roster.
type RosterPhase string

const (
	RosterIdle    RosterPhase = "idle"
	RosterLoading RosterPhase = "loading"
	RosterLoaded  RosterPhase = "loaded"
	RosterFailed  RosterPhase = "failed"
)

// TeamRoster wraps the team list in its loading state so consumers can
// degrade gracefully when team resolution fails.
type TeamRoster struct {
	Phase RosterPhase
	Teams []Team
}
