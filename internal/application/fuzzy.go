package application

import (
	"sort"
	"strings"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
)

// Field weights: a title hit outranks an equally good repository hit, which
// outranks an author hit.
const (
	weightTitle  = 3.0
	weightRepo   = 2.0
	weightAuthor = 1.5
)

// similarityFloor is the minimum normalized edit-distance similarity that
// counts as a match. Weaker resemblance is noise: without the floor almost
// every item would score above zero against any query.
const similarityFloor = 0.5

type scoredItem struct {
	item  model.PullRequestItem
	score float64
}

// MatchItems ranks items against a free-text query. The result is empty for
// an empty query and excludes items scoring zero. Ordering is score
// descending with ties broken by ascending PR number, deterministic
// regardless of input order.
func MatchItems(query string, items []model.PullRequestItem) []model.PullRequestItem {
	if query == "" {
		return nil
	}

	scored := make([]scoredItem, 0, len(items))
	for _, item := range items {
		if score := itemScore(query, item); score > 0 {
			scored = append(scored, scoredItem{item: item, score: score})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].item.Number < scored[j].item.Number
	})

	out := make([]model.PullRequestItem, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.item)
	}
	return out
}

// itemScore is the maximum weighted field quality across title, repository
// name, and author.
func itemScore(query string, item model.PullRequestItem) float64 {
	score := weightTitle * fieldQuality(query, item.Title)
	if s := weightRepo * fieldQuality(query, item.Repo); s > score {
		score = s
	}
	if s := weightAuthor * fieldQuality(query, item.Author); s > score {
		score = s
	}
	return score
}

// fieldQuality rates how well a field matches the query, in [0,1].
// Comparison is case-insensitive. Tiers: exact 1.0, prefix 0.9, substring
// 0.7, then normalized edit-distance similarity subject to similarityFloor.
func fieldQuality(query, field string) float64 {
	q := strings.ToLower(query)
	f := strings.ToLower(field)

	switch {
	case f == q:
		return 1.0
	case strings.HasPrefix(f, q):
		return 0.9
	case strings.Contains(f, q):
		return 0.7
	}

	if sim := SimilarityScore(q, f); sim >= similarityFloor {
		return sim
	}
	return 0
}

// SimilarityScore is the normalized edit-distance similarity
// 1 - lev(a,b)/max(len(a), len(b)), measured over runes. Two empty strings
// are identical (1.0); an empty string shares nothing with a non-empty one (0.0).
func SimilarityScore(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	lenA := len([]rune(a))
	lenB := len([]rune(b))
	return 1.0 - float64(Levenshtein(a, b))/float64(max(lenA, lenB))
}

// Levenshtein computes the classic edit distance with single-character
// insert, delete, and substitute all costing 1, over runes.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
