package validation

import (
	"fmt"
	"strings"

	"keywordpyramid/internal/models"
)

// ValidationError reports a malformed field on create/update or a bulk
// import row. It carries field-level detail and is never fatal to a batch.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errorf builds a ValidationError for a field.
func Errorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NormalizeKeyword trims and lowercases keyword text so the uniqueness
// constraint is case-insensitive in practice.
func NormalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

// ValidateKeywordText checks that keyword text is present and within bounds.
func ValidateKeywordText(keyword string) *ValidationError {
	if keyword == "" {
		return Errorf("keyword", "keyword text is required")
	}
	if len(keyword) > 255 {
		return Errorf("keyword", "keyword text must be at most 255 characters")
	}
	return nil
}

// ValidateKeywordFields checks the numeric and enum attributes of a
// keyword. Nil pointers mean the attribute is absent and skip the check.
func ValidateKeywordFields(searchVolume int64, difficulty, competition *float64, cpc float64, tier, aioStatus *string) *ValidationError {
	if searchVolume < 0 {
		return Errorf("search_volume", "must be non-negative")
	}
	if difficulty != nil && (*difficulty < 0 || *difficulty > 100) {
		return Errorf("difficulty", "must be between 0 and 100")
	}
	if cpc < 0 {
		return Errorf("cpc", "must be non-negative")
	}
	if competition != nil && (*competition < 0 || *competition > 1) {
		return Errorf("competition", "must be between 0 and 1")
	}
	if tier != nil && !models.ValidTier(*tier) {
		return Errorf("priority_tier", "must be one of P0-P4")
	}
	if aioStatus != nil && *aioStatus != "" && !models.ValidAIOStatus(*aioStatus) {
		return Errorf("aio_status", "must be active, inactive, or monitoring")
	}
	return nil
}
