package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateSearchQuery validates a search request and normalises its limit.
// A zero limit becomes DefaultSearchLimit; anything outside [1,50] is rejected.
func ValidateSearchQuery(q *SearchQuery) error {
	if strings.TrimSpace(q.Text) == "" {
		return NewValidationError("query", q.Text, ErrEmptyQuery)
	}
	if q.Limit == 0 {
		q.Limit = DefaultSearchLimit
	}
	if q.Limit < MinSearchLimit || q.Limit > MaxSearchLimit {
		return NewValidationError("limit", strconv.Itoa(q.Limit), ErrLimitOutOfRange)
	}
	if q.Filters != nil {
		if err := validateFilters(q.Filters); err != nil {
			return err
		}
	}
	return nil
}

func validateFilters(f *SearchFilters) error {
	if f.MinPrice != 0 && (f.MinPrice < MinPriceLevel || f.MinPrice > MaxPriceLevel) {
		return NewValidationError("min_price", strconv.Itoa(f.MinPrice), ErrPriceOutOfRange)
	}
	if f.MaxPrice != 0 && (f.MaxPrice < MinPriceLevel || f.MaxPrice > MaxPriceLevel) {
		return NewValidationError("max_price", strconv.Itoa(f.MaxPrice), ErrPriceOutOfRange)
	}
	if f.MinPrice != 0 && f.MaxPrice != 0 && f.MinPrice > f.MaxPrice {
		return NewValidationError("min_price", strconv.Itoa(f.MinPrice), ErrPriceRangeFlip)
	}
	return nil
}

// ValidateSafetyRequest validates a safety check request.
func ValidateSafetyRequest(r SafetyRequest) error {
	if strings.TrimSpace(r.LocationName) == "" {
		return NewValidationError("location_name", r.LocationName, ErrEmptyLocation)
	}
	if r.Coordinates.Lat < -90 || r.Coordinates.Lat > 90 {
		return NewValidationError("lat", fmt.Sprintf("%g", r.Coordinates.Lat), ErrInvalidLatitude)
	}
	if r.Coordinates.Lng < -180 || r.Coordinates.Lng > 180 {
		return NewValidationError("lng", fmt.Sprintf("%g", r.Coordinates.Lng), ErrInvalidLongitude)
	}
	if !ValidTimesOfDay[r.TimeOfDay] {
		return NewValidationError("time_of_day", string(r.TimeOfDay), ErrInvalidTimeOfDay)
	}
	return nil
}

// ValidateChat validates a chat message and its optional history.
func ValidateChat(message string, history []ChatTurn) error {
	if strings.TrimSpace(message) == "" {
		return NewValidationError("message", message, ErrEmptyMessage)
	}
	for i, turn := range history {
		if turn.Role != "user" && turn.Role != "assistant" {
			return NewValidationError(fmt.Sprintf("history[%d].role", i), turn.Role, ErrInvalidRole)
		}
	}
	return nil
}

// SearchableText composes the text that gets embedded for a location.
func SearchableText(loc Location) string {
	parts := []string{loc.Name, loc.Description}
	if len(loc.Tags) > 0 {
		parts = append(parts, strings.Join(loc.Tags, " "))
	}
	return strings.Join(parts, " ")
}
