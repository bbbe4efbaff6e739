package retrieval

import (
	"strings"

	"github.com/MarhabaAI/marhaba-mvp/engine/domain"
)

// FallbackScore is the fixed placeholder relevance for keyword matches.
// True semantic similarity is unavailable on this path; the constant
// score is a documented approximation, not a bug.
const FallbackScore = 0.8

// Matcher is the degraded keyword search over an in-memory location set.
// It carries no mutable state after construction, so it is safe for
// concurrent use.
type Matcher struct {
	locations []domain.Location
}

// NewMatcher creates a Matcher over the given collection. An empty or nil
// collection is valid and naturally yields no results.
func NewMatcher(locations []domain.Location) *Matcher {
	return &Matcher{locations: locations}
}

// Match returns locations where any whitespace-delimited, lower-cased token
// of the query appears as a substring of the lower-cased name+description.
// Results keep first-match order over the collection, truncated to limit.
func (m *Matcher) Match(query string, limit int, filters *domain.SearchFilters) []Ranked {
	tokens := strings.Fields(strings.ToLower(query))
	results := make([]Ranked, 0, limit)

	for _, loc := range m.locations {
		if len(results) == limit {
			break
		}
		if !matchesFilters(loc, filters) {
			continue
		}
		haystack := strings.ToLower(loc.Name + " " + loc.Description)
		for _, tok := range tokens {
			if strings.Contains(haystack, tok) {
				results = append(results, Ranked{
					ID:          loc.ID,
					Name:        loc.Name,
					Description: loc.Description,
					Category:    loc.Category,
					Score:       FallbackScore,
					Tags:        loc.Tags,
				})
				break
			}
		}
	}
	return results
}

// matchesFilters applies the full filter conjunction.
func matchesFilters(loc domain.Location, f *domain.SearchFilters) bool {
	if f == nil {
		return true
	}
	if f.Category != "" && loc.Category != f.Category {
		return false
	}
	if f.IsHalal != nil && loc.IsHalal != *f.IsHalal {
		return false
	}
	if f.IsFamilyFriendly != nil && loc.IsFamilyFriendly != *f.IsFamilyFriendly {
		return false
	}
	return priceInRange(loc, f)
}
