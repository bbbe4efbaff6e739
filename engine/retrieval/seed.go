package retrieval

import "github.com/MarhabaAI/marhaba-mvp/engine/domain"

// SeedLocations is a small curated collection backing the fallback matcher
// so keyword search is useful before the vector index is populated.
// Callers can pass their own slice to NewMatcher instead.
var SeedLocations = []domain.Location{
	{
		ID:          "loc-burj-khalifa",
		Name:        "Burj Khalifa",
		Description: "The world's tallest building with observation decks overlooking the city skyline",
		Category:    "attraction",
		District:    "Downtown Dubai",
		Tags:        []string{"landmark", "views", "architecture"},
		PriceLevel:  3, IsFamilyFriendly: true,
	},
	{
		ID:          "loc-pierchic",
		Name:        "Pierchic",
		Description: "Overwater dining with stunning sunset views at the end of a wooden pier",
		Category:    "restaurant",
		District:    "Al Sufouh",
		Tags:        []string{"seafood", "romantic", "sunset"},
		PriceLevel:  4, IsHalal: true,
	},
	{
		ID:          "loc-dubai-marina-walk",
		Name:        "Dubai Marina Walk",
		Description: "Waterfront promenade with cafes, yachts and evening strolls",
		Category:    "attraction",
		District:    "Dubai Marina",
		Tags:        []string{"waterfront", "walking", "evening"},
		PriceLevel:  1, IsFamilyFriendly: true,
	},
	{
		ID:          "loc-al-fanar",
		Name:        "Al Fanar Restaurant",
		Description: "Traditional Emirati cuisine in a heritage courtyard setting",
		Category:    "restaurant",
		District:    "Dubai Festival City",
		Tags:        []string{"emirati", "traditional", "local"},
		PriceLevel:  2, IsHalal: true, IsFamilyFriendly: true,
	},
	{
		ID:          "loc-jumeirah-beach",
		Name:        "Jumeirah Public Beach",
		Description: "White sand beach with views of the Burj Al Arab, open until late",
		Category:    "beach",
		District:    "Jumeirah",
		Tags:        []string{"beach", "swimming", "free"},
		PriceLevel:  1, IsFamilyFriendly: true,
	},
	{
		ID:          "loc-gold-souk",
		Name:        "Deira Gold Souk",
		Description: "Historic covered market with hundreds of gold and jewellery traders",
		Category:    "shopping",
		District:    "Deira",
		Tags:        []string{"souk", "gold", "haggling"},
		PriceLevel:  2, IsFamilyFriendly: true,
	},
	{
		ID:          "loc-desert-safari",
		Name:        "Al Marmoom Desert Safari",
		Description: "Dune bashing, camel rides and a bedouin camp dinner under the stars",
		Category:    "activity",
		District:    "Al Marmoom",
		Tags:        []string{"desert", "adventure", "dinner"},
		PriceLevel:  3, IsHalal: true, IsFamilyFriendly: true,
	},
	{
		ID:          "loc-alserkal",
		Name:        "Alserkal Avenue",
		Description: "Contemporary art galleries and indie cafes in an industrial district",
		Category:    "culture",
		District:    "Al Quoz",
		Tags:        []string{"art", "galleries", "coffee"},
		PriceLevel:  2,
	},
}
