// Package normalizers provides field normalization for similarity comparison
package normalizers

import (
	"strings"
	"unicode"

	"github.com/Ramsey-B/dahlia/pkg/models"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	// Register built-in normalizers
	Register("lowercase", Lowercase)
	Register("trim", Trim)
	Register("clean", Clean)
	Register("digits_only", DigitsOnly)
	Register("nphone", NormalizePhone)
	Register("naddress", NormalizeAddress)
	Register("alphanumeric", Alphanumeric)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Apply applies a named normalizer to a value
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// ForFieldType normalizes a field value for comparison according to its
// semantic type. Null values normalize to the empty string, which scores 0
// against any non-empty value.
func ForFieldType(value models.FieldValue, fieldType models.FieldType) string {
	if value.IsNull() {
		return ""
	}

	s := Clean(value.String())

	switch fieldType {
	case models.FieldTypePhone:
		return DigitsOnly(s)
	case models.FieldTypeAddress:
		return StripRoadwayTokens(s)
	default:
		return s
	}
}

// Built-in normalizers

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// Clean lowercases, trims, strips every character that is not alphanumeric
// or whitespace, and collapses whitespace runs
func Clean(s string) string {
	s = strings.ToLower(s)

	var result strings.Builder
	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
			prevSpace = false
		} else if unicode.IsSpace(r) {
			if !prevSpace {
				result.WriteRune(' ')
				prevSpace = true
			}
		}
	}

	return strings.TrimSpace(result.String())
}

// DigitsOnly keeps only digit characters
func DigitsOnly(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// NormalizePhone cleans a phone number down to its digits
func NormalizePhone(s string) string {
	return DigitsOnly(Clean(s))
}

// roadwayTokens are redundant roadway words removed from addresses so that
// "12 Oak Street" and "12 Oak St" compare as equal
var roadwayTokens = map[string]bool{
	"road":   true,
	"rd":     true,
	"street": true,
	"st":     true,
	"avenue": true,
	"ave":    true,
	"lane":   true,
	"ln":     true,
	"drive":  true,
	"dr":     true,
}

// StripRoadwayTokens removes roadway abbreviations as whole tokens
func StripRoadwayTokens(s string) string {
	tokens := strings.Fields(s)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if roadwayTokens[tok] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// NormalizeAddress cleans an address and strips roadway tokens
func NormalizeAddress(s string) string {
	return StripRoadwayTokens(Clean(s))
}

// Alphanumeric keeps only alphanumeric characters
func Alphanumeric(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
