// Package validation checks the free-text answers collected during
// registration.
package validation

import (
	"regexp"
	"strconv"
	"strings"

	"marafon/internal/models"
)

const (
	MinAge    = 13
	MaxAge    = 80
	MinHeight = 120
	MaxHeight = 220
	MinWeight = 30
	MaxWeight = 300
)

var (
	phonePattern = regexp.MustCompile(`^\+998\d{9}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\p{Cyrillic}\s]{2,50}$`)
)

// NormalizePhone trims spaces and prefixes a bare digit string with "+".
func NormalizePhone(raw string) string {
	phone := strings.TrimSpace(raw)
	if phone != "" && phone[0] >= '0' && phone[0] <= '9' {
		phone = "+" + phone
	}
	return phone
}

// ValidatePhone normalizes raw and accepts only Uzbek numbers in
// +998XXXXXXXXX form.
func ValidatePhone(raw string) (string, bool) {
	phone := NormalizePhone(raw)
	if !phonePattern.MatchString(phone) {
		return "", false
	}
	return phone, true
}

// ValidateName accepts 2-50 Latin or Cyrillic letters and whitespace.
func ValidateName(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if !namePattern.MatchString(name) {
		return "", false
	}
	return name, true
}

// ValidateAge parses a whole number of years in [MinAge, MaxAge].
func ValidateAge(raw string) (int, bool) {
	return parseInRange(raw, MinAge, MaxAge)
}

// ValidateHeight parses a whole number of centimetres in [MinHeight, MaxHeight].
func ValidateHeight(raw string) (int, bool) {
	return parseInRange(raw, MinHeight, MaxHeight)
}

// ValidateWeight parses a whole number of kilograms in [MinWeight, MaxWeight].
func ValidateWeight(raw string) (int, bool) {
	return parseInRange(raw, MinWeight, MaxWeight)
}

func ValidRegion(region string) bool {
	return models.IsKnownRegion(region)
}

func parseInRange(raw string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}
