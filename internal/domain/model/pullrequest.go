// Package model contains the domain value types shared across the application.
package model

import (
	"fmt"
	"time"
)

// PullRequestItem is one reviewable unit in the working set. The struct holds
// only the immutable core produced by aggregation; enrichment data lives in a
// separate PreviewMetadata slot addressed by Key(), so concurrent enrichment
// never mutates an item in place.
type PullRequestItem struct {
	Owner         string
	Repo          string
	Number        int
	Title         string
	Author        string
	UpdatedAt     time.Time
	URL           string
	IssueComments int // PR-level conversation comments reported by the search record.
	Labels        []string
}

// Key returns the globally unique identity key "owner/repo#number", used for
// deduplication and enrichment lookups.
func (p PullRequestItem) Key() string {
	return fmt.Sprintf("%s/%s#%d", p.Owner, p.Repo, p.Number)
}

// RepoFullName returns the "owner/repo" form of the item's repository.
func (p PullRequestItem) RepoFullName() string {
	return p.Owner + "/" + p.Repo
}
