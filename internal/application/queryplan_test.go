package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
)

func TestPlanQueries_NoTeams(t *testing.T) {
	queries := PlanQueries("alice", nil)

	assert.Equal(t, []string{
		"is:pr is:open review-requested:alice -author:alice",
		"is:pr is:open assignee:alice -author:alice",
		"is:pr is:open reviewed-by:alice -author:alice",
	}, queries)
}

func TestPlanQueries_WithTeams(t *testing.T) {
	teams := []model.Team{
		{Slug: "platform", Organization: "acme"},
		{Slug: "platform", Organization: "other-org"},
	}

	queries := PlanQueries("alice", teams)

	assert.Len(t, queries, 5)
	assert.Equal(t, "is:pr is:open team-review-requested:acme/platform -author:alice", queries[3])
	assert.Equal(t, "is:pr is:open team-review-requested:other-org/platform -author:alice", queries[4])
}

func TestPlanQueries_EveryQueryExcludesSelfAuthored(t *testing.T) {
	queries := PlanQueries("bob", []model.Team{{Slug: "t", Organization: "o"}})

	for _, q := range queries {
		assert.Contains(t, q, "-author:bob", "query %q must exclude self-authored PRs", q)
	}
}
