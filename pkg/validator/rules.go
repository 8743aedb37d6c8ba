package validator

import (
	"fmt"
	"slices"
	"unicode/utf8"
)

// Numeric is the set of types the number rules accept.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Rule is a single check with the error reported when it fails.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply runs every rule and returns ValidationErrors for the failed ones,
// in rule order, or nil when all pass.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, r := range rules {
		if r.Check != nil && !r.Check() {
			errs = append(errs, r.Error)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func newRule(field string, ok func() bool, msg, key string, values map[string]any) Rule {
	if values == nil {
		values = map[string]any{}
	}
	values["field"] = field
	return Rule{
		Check: ok,
		Error: ValidationError{
			Field:             field,
			Message:           msg,
			TranslationKey:    key,
			TranslationValues: values,
		},
	}
}

// RequiredString fails on an empty string.
func RequiredString(field, value string) Rule {
	return newRule(field, func() bool { return value != "" },
		"is required", "validation.required", nil)
}

// RequiredNum fails on zero.
func RequiredNum[T Numeric](field string, value T) Rule {
	return newRule(field, func() bool { return value != 0 },
		"is required", "validation.required", nil)
}

// RequiredSlice fails on an empty slice.
func RequiredSlice[T any](field string, value []T) Rule {
	return newRule(field, func() bool { return len(value) > 0 },
		"is required", "validation.required", nil)
}

// RequiredMap fails on an empty map.
func RequiredMap[K comparable, V any](field string, value map[K]V) Rule {
	return newRule(field, func() bool { return len(value) > 0 },
		"is required", "validation.required", nil)
}

// MinLenString fails when value has fewer than minLen characters.
func MinLenString(field, value string, minLen int) Rule {
	return newRule(field, func() bool { return utf8.RuneCountInString(value) >= minLen },
		fmt.Sprintf("must be at least %d characters long", minLen), "validation.min_length",
		map[string]any{"min": minLen})
}

// MaxLenString fails when value has more than maxLen characters.
func MaxLenString(field, value string, maxLen int) Rule {
	return newRule(field, func() bool { return utf8.RuneCountInString(value) <= maxLen },
		fmt.Sprintf("must not exceed %d characters", maxLen), "validation.max_length",
		map[string]any{"max": maxLen})
}

// LenString fails unless value has exactly length characters.
func LenString(field, value string, length int) Rule {
	return newRule(field, func() bool { return utf8.RuneCountInString(value) == length },
		fmt.Sprintf("must be exactly %d characters long", length), "validation.exact_length",
		map[string]any{"length": length})
}

// MinNum fails when value is below minVal.
func MinNum[T Numeric](field string, value, minVal T) Rule {
	return newRule(field, func() bool { return value >= minVal },
		fmt.Sprintf("must be at least %v", minVal), "validation.min",
		map[string]any{"min": minVal})
}

// MaxNum fails when value is above maxVal.
func MaxNum[T Numeric](field string, value, maxVal T) Rule {
	return newRule(field, func() bool { return value <= maxVal },
		fmt.Sprintf("must not exceed %v", maxVal), "validation.max",
		map[string]any{"max": maxVal})
}

// MinLenSlice fails when value has fewer than minLen items.
func MinLenSlice[T any](field string, value []T, minLen int) Rule {
	return newRule(field, func() bool { return len(value) >= minLen },
		fmt.Sprintf("must contain at least %d items", minLen), "validation.min_items",
		map[string]any{"min": minLen})
}

// MaxLenSlice fails when value has more than maxLen items.
func MaxLenSlice[T any](field string, value []T, maxLen int) Rule {
	return newRule(field, func() bool { return len(value) <= maxLen },
		fmt.Sprintf("must not contain more than %d items", maxLen), "validation.max_items",
		map[string]any{"max": maxLen})
}

// LenSlice fails unless value has exactly count items.
func LenSlice[T any](field string, value []T, count int) Rule {
	return newRule(field, func() bool { return len(value) == count },
		fmt.Sprintf("must contain exactly %d items", count), "validation.exact_items",
		map[string]any{"count": count})
}

// OneOf fails unless value is one of allowed.
func OneOf[T comparable](field string, value T, allowed ...T) Rule {
	return newRule(field, func() bool { return slices.Contains(allowed, value) },
		fmt.Sprintf("must be one of %v", allowed), "validation.one_of",
		map[string]any{"values": allowed})
}

// Tag checks value against a struct-tag expression, e.g. "email" or "url".
// See Var for the available tags.
func Tag(field string, value any, tag string) Rule {
	err := Var(field, value, tag)
	if err == nil {
		return Rule{Check: func() bool { return true }}
	}
	ve := ExtractValidationErrors(err)
	if len(ve) == 0 {
		return newRule(field, func() bool { return false }, err.Error(), "", nil)
	}
	return Rule{Check: func() bool { return false }, Error: ve[0]}
}
