package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/reviewdeck/internal/application"
	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body. Kind carries the
// classified failure for upstream errors so clients can switch exhaustively;
// RateLimitReset is set only for rate-limited failures with a derivable reset.
type errorResponse struct {
	Error          string `json:"error"`
	Kind           string `json:"kind,omitempty"`
	RateLimitReset string `json:"rate_limit_reset,omitempty"`
}

// PullsResponse is the presented working set plus presentation flags.
type PullsResponse struct {
	Items     []PRItemResponse `json:"items"`
	Enriching bool             `json:"enriching"`
	Advisory  string           `json:"advisory,omitempty"`
}

// PRItemResponse is the JSON representation of one presented item. Metadata
// is null until enrichment succeeds; clients render that as unavailable.
type PRItemResponse struct {
	Key           string            `json:"key"`
	Owner         string            `json:"owner"`
	Repo          string            `json:"repo"`
	Number        int               `json:"number"`
	Title         string            `json:"title"`
	Author        string            `json:"author"`
	UpdatedAt     time.Time         `json:"updated_at"`
	URL           string            `json:"url"`
	Labels        []string          `json:"labels"`
	IssueComments int               `json:"issue_comments"`
	Metadata      *MetadataResponse `json:"metadata"`
}

// MetadataResponse is the JSON representation of an enrichment snapshot.
type MetadataResponse struct {
	Additions          int                `json:"additions"`
	Deletions          int                `json:"deletions"`
	ChangedFiles       int                `json:"changed_files"`
	RequestedReviewers []ReviewerResponse `json:"requested_reviewers"`
	CompletedReviewers []ReviewerResponse `json:"completed_reviewers"`
	CIStatus           string             `json:"ci_status"`
	MergeStatus        string             `json:"merge_status"`
	TotalComments      int                `json:"total_comments"`
}

// ReviewerResponse pairs a reviewer login with its state.
type ReviewerResponse struct {
	Login string `json:"login"`
	State string `json:"state"`
}

// FilterMetadataResponse carries the filter choice lists.
type FilterMetadataResponse struct {
	Organizations []string       `json:"organizations"`
	Repositories  []string       `json:"repositories"`
	TeamsState    string         `json:"teams_state"`
	Teams         []TeamResponse `json:"teams"`
}

// TeamResponse is the JSON representation of a selectable team.
type TeamResponse struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Organization string `json:"organization"`
}

// QueryRequest is the body of the update-query intent.
type QueryRequest struct {
	Query string `json:"query"`
}

// FilterConfigRequest is the body of the update-filter-configuration intent.
type FilterConfigRequest struct {
	Organizations []string `json:"organizations"`
	Repositories  []string `json:"repositories"`
	Teams         []string `json:"teams"`
}

// toPRItemResponse converts a presented item to its JSON representation.
func toPRItemResponse(p application.PresentedItem) PRItemResponse {
	labels := p.Item.Labels
	if labels == nil {
		labels = []string{}
	}

	return PRItemResponse{
		Key:           p.Item.Key(),
		Owner:         p.Item.Owner,
		Repo:          p.Item.Repo,
		Number:        p.Item.Number,
		Title:         p.Item.Title,
		Author:        p.Item.Author,
		UpdatedAt:     p.Item.UpdatedAt,
		URL:           p.Item.URL,
		Labels:        labels,
		IssueComments: p.Item.IssueComments,
		Metadata:      toMetadataResponse(p.Metadata),
	}
}

// toMetadataResponse converts an enrichment snapshot, passing nil through.
func toMetadataResponse(m *model.PreviewMetadata) *MetadataResponse {
	if m == nil {
		return nil
	}

	return &MetadataResponse{
		Additions:          m.Additions,
		Deletions:          m.Deletions,
		ChangedFiles:       m.ChangedFiles,
		RequestedReviewers: toReviewerResponses(m.RequestedReviewers),
		CompletedReviewers: toReviewerResponses(m.CompletedReviewers),
		CIStatus:           string(m.CIStatus),
		MergeStatus:        string(m.MergeStatus),
		TotalComments:      m.TotalComments,
	}
}

func toReviewerResponses(reviewers []model.Reviewer) []ReviewerResponse {
	out := make([]ReviewerResponse, 0, len(reviewers))
	for _, r := range reviewers {
		out = append(out, ReviewerResponse{Login: r.Login, State: string(r.State)})
	}
	return out
}

// toFilterMetadataResponse converts derived filter metadata.
func toFilterMetadataResponse(meta model.FilterMetadata) FilterMetadataResponse {
	orgs := meta.Organizations
	if orgs == nil {
		orgs = []string{}
	}
	repos := meta.Repositories
	if repos == nil {
		repos = []string{}
	}

	teams := make([]TeamResponse, 0, len(meta.Teams.Teams))
	for _, t := range meta.Teams.Teams {
		teams = append(teams, TeamResponse{Slug: t.Slug, Name: t.Name, Organization: t.Organization})
	}

	return FilterMetadataResponse{
		Organizations: orgs,
		Repositories:  repos,
		TeamsState:    string(meta.Teams.Phase),
		Teams:         teams,
	}
}
