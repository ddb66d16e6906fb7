package common

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Error returns a combined error message
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	var messages []string
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return NewAppError("VALIDATION_ERROR", strings.Join(messages, "; "), ErrInvalidInput)
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value interface{}) *ValidationError

// Required - Common validation rules
func Required(fieldName string, value interface{}) *ValidationError {
	if value == nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}
	return nil
}

// MaxLength bounds the rune count of a string field; non-strings pass.
func MaxLength(max int) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		str, ok := value.(string)
		if !ok {
			return nil
		}
		if utf8.RuneCountInString(str) > max {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("must be at most %d characters", max),
			}
		}
		return nil
	}
}

// Matches validates a non-empty string field against re; empty values pass
// so optional fields can reuse the rule.
func Matches(re *regexp.Regexp, hint string) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		str, ok := value.(string)
		if !ok || str == "" {
			return nil
		}
		if !re.MatchString(str) {
			return &ValidationError{Field: fieldName, Value: value, Message: hint}
		}
		return nil
	}
}

// DateYMD validates a non-empty string field as a YYYY-MM-DD date.
func DateYMD(fieldName string, value interface{}) *ValidationError {
	str, ok := value.(string)
	if !ok || str == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", str); err != nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a date in YYYY-MM-DD format"}
	}
	return nil
}

// OneOf validates a non-empty string field against an allowed set.
func OneOf(allowed []string) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		str, ok := value.(string)
		if !ok || str == "" {
			return nil
		}
		for _, a := range allowed {
			if str == a {
				return nil
			}
		}
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")),
		}
	}
}
