// Package domain defines core domain types, constants, and validation for the
// Marhaba engine. It acts as the validation gate at the transport boundary:
// the retrieval and safety services assume input that passed through here.
package domain

// Location is the payload stored alongside each vector in the index.
// Locations are never mutated in place; re-ingestion replaces by ID.
type Location struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	District         string   `json:"district,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	PriceLevel       int      `json:"price_level,omitempty"` // 1 (budget) to 4 (luxury)
	IsHalal          bool     `json:"is_halal"`
	IsFamilyFriendly bool     `json:"is_family_friendly"`
}

// Coordinates is a WGS84 lat/lng pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TimeOfDay buckets a safety request into a coarse daypart.
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

// ValidTimesOfDay is the set of recognised dayparts.
var ValidTimesOfDay = map[TimeOfDay]bool{
	TimeMorning: true, TimeAfternoon: true, TimeEvening: true, TimeNight: true,
}

// SearchFilters narrows search results. Zero-valued fields are ignored;
// provided fields combine as a conjunction.
type SearchFilters struct {
	Category         string `json:"category,omitempty"`
	MinPrice         int    `json:"min_price,omitempty"` // 1-4
	MaxPrice         int    `json:"max_price,omitempty"` // 1-4
	IsHalal          *bool  `json:"is_halal,omitempty"`
	IsFamilyFriendly *bool  `json:"is_family_friendly,omitempty"`
}

// SearchQuery is a validated search request.
type SearchQuery struct {
	Text    string         `json:"text"`
	Limit   int            `json:"limit"`
	Filters *SearchFilters `json:"filters,omitempty"`
	UserID  string         `json:"user_id,omitempty"`
}

// ChatTurn is one prior message in a conversation.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// SafetyRequest asks for a safety assessment of a place at a daypart.
type SafetyRequest struct {
	LocationName string      `json:"location_name"`
	Coordinates  Coordinates `json:"coordinates"`
	TimeOfDay    TimeOfDay   `json:"time_of_day"`
	UserID       string      `json:"user_id,omitempty"`
}

// RiskLevel classifies a risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// SafetyAssessment is the structured result of a safety check.
// It is produced fresh per request and never persisted.
type SafetyAssessment struct {
	RiskScore       int       `json:"risk_score"` // 0-100, higher is riskier
	RiskLevel       RiskLevel `json:"risk_level"`
	Analysis        string    `json:"analysis"`
	Recommendations []string  `json:"recommendations"` // 1-5 entries, never empty
	Location        string    `json:"location"`
	TimeOfDay       TimeOfDay `json:"time_of_day"`
}

// Search limits.
const (
	MinSearchLimit     = 1
	MaxSearchLimit     = 50
	DefaultSearchLimit = 10
)

// Price level bounds.
const (
	MinPriceLevel = 1
	MaxPriceLevel = 4
)
