package retrieval

import (
	"testing"

	"github.com/MarhabaAI/marhaba-mvp/engine/domain"
)

func fallbackCollection() []domain.Location {
	return []domain.Location{
		{ID: "1", Name: "Pierchic", Description: "Overwater dining with stunning sunset views", Category: "restaurant", PriceLevel: 4},
		{ID: "2", Name: "Kite Beach", Description: "Sandy beach with water sports", Category: "beach", PriceLevel: 1},
		{ID: "3", Name: "Sunset Lounge", Description: "Rooftop bar", Category: "restaurant", PriceLevel: 3},
	}
}

func TestMatch_TokenSubstring(t *testing.T) {
	m := NewMatcher(fallbackCollection())

	results := m.Match("romantic sunset dinner", 10, nil)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (both sunset entries)", len(results))
	}
	if results[0].ID != "1" || results[1].ID != "3" {
		t.Errorf("order = [%s %s], want collection order [1 3]", results[0].ID, results[1].ID)
	}
	for _, r := range results {
		if r.Score != FallbackScore {
			t.Errorf("score = %g, want fixed %g", r.Score, float32(FallbackScore))
		}
	}
}

func TestMatch_CaseInsensitive(t *testing.T) {
	m := NewMatcher(fallbackCollection())
	if got := m.Match("SUNSET", 10, nil); len(got) != 2 {
		t.Errorf("uppercase query got %d results, want 2", len(got))
	}
	if got := m.Match("pierchic", 10, nil); len(got) != 1 {
		t.Errorf("name token got %d results, want 1", len(got))
	}
}

func TestMatch_AbsentToken(t *testing.T) {
	m := NewMatcher(fallbackCollection())
	if got := m.Match("snowboarding", 10, nil); len(got) != 0 {
		t.Errorf("got %d results for absent token, want 0", len(got))
	}
}

func TestMatch_EmptyCollection(t *testing.T) {
	m := NewMatcher(nil)
	if got := m.Match("anything", 10, nil); len(got) != 0 {
		t.Errorf("empty collection returned %d results", len(got))
	}
}

func TestMatch_LimitTruncation(t *testing.T) {
	m := NewMatcher(fallbackCollection())
	if got := m.Match("sunset", 1, nil); len(got) != 1 {
		t.Errorf("got %d results, want limit 1", len(got))
	}
}

func TestMatch_FilterConjunction(t *testing.T) {
	m := NewMatcher(fallbackCollection())

	results := m.Match("sunset", 10, &domain.SearchFilters{
		Category: "restaurant",
		MaxPrice: 3,
	})

	if len(results) != 1 || results[0].ID != "3" {
		t.Fatalf("results = %v, want only the cheap restaurant", results)
	}
}

func TestMatch_BoolFilter(t *testing.T) {
	yes := true
	locs := []domain.Location{
		{ID: "1", Name: "A", Description: "beach spot", IsFamilyFriendly: true},
		{ID: "2", Name: "B", Description: "beach club", IsFamilyFriendly: false},
	}
	m := NewMatcher(locs)

	results := m.Match("beach", 10, &domain.SearchFilters{IsFamilyFriendly: &yes})
	if len(results) != 1 || results[0].ID != "1" {
		t.Errorf("results = %v, want only the family-friendly entry", results)
	}
}
