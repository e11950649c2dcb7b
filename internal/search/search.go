// Package search ranks picker candidates against a typed filter.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

type (
	// Candidate is one entry offered to the user.
	Candidate struct {
		ID     string
		Label  string
		Detail string
	}

	// Match is a candidate that satisfied the filter.
	Match struct {
		Candidate
		// Index is the candidate's position in the input slice.
		Index int
		Score int
		// Positions are the byte offsets in Label that matched.
		Positions []int
	}
)

// SearchError reports an unusable query.
type SearchError struct {
	Message string
}

func (e *SearchError) Error() string {
	return e.Message
}

type source []Candidate

func (s source) String(i int) string { return s[i].Label }
func (s source) Len() int            { return len(s) }

// Rank returns the candidates matching query, best first. An empty query
// keeps every candidate in its original order.
func Rank(query string, candidates []Candidate) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Match, len(candidates))
		for i, c := range candidates {
			out[i] = Match{Candidate: c, Index: i}
		}
		return out
	}

	found := fuzzy.FindFrom(query, source(candidates))
	out := make([]Match, 0, len(found))
	for _, m := range found {
		out = append(out, Match{
			Candidate: candidates[m.Index],
			Index:     m.Index,
			Score:     m.Score,
			Positions: m.MatchedIndexes,
		})
	}
	return out
}

// Best returns the single best match for query.
func Best(query string, candidates []Candidate) (Match, error) {
	if strings.TrimSpace(query) == "" {
		return Match{}, &SearchError{Message: "Search query cannot be empty"}
	}
	matches := Rank(query, candidates)
	if len(matches) == 0 {
		return Match{}, &SearchError{Message: "No match for " + query}
	}
	for _, m := range matches {
		if strings.EqualFold(m.Label, query) {
			return m, nil
		}
	}
	return matches[0], nil
}
