// Package application contains use-case orchestration services and the pure
// engines they compose: query planning, aggregation, enrichment, filtering,
// and fuzzy matching.
package application

import (
	"fmt"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
)

// PlanQueries builds the ordered list of independent search queries for the
// given identity. Every query is scoped to open pull requests and excludes
// ones authored by the identity itself. With an empty team list only the
// three personal queries are planned.
//
// This is a pure function: no query depends on another's result.
func PlanQueries(login string, teams []model.Team) []string {
	queries := []string{
		fmt.Sprintf("is:pr is:open review-requested:%s -author:%s", login, login),
		fmt.Sprintf("is:pr is:open assignee:%s -author:%s", login, login),
		fmt.Sprintf("is:pr is:open reviewed-by:%s -author:%s", login, login),
	}

	for _, team := range teams {
		queries = append(queries,
			fmt.Sprintf("is:pr is:open team-review-requested:%s/%s -author:%s", team.Organization, team.Slug, login))
	}

	return queries
}
