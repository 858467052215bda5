/*
errors.go - Failure categories of the calculation pipeline

PURPOSE:
  Every failure of a calculation falls into one of four categories. Each
  category has a sentinel for errors.Is() and a structured type carrying
  context for callers that map failures to user-facing messages.

ERROR CATEGORIES:
  1. Validation         - malformed or out-of-bounds input
  2. Domain constraint  - logically inconsistent input
  3. Missing data       - a provider had no entry for the requested period
  4. Numeric integrity  - a value became non-finite or negative (always fatal)

  The engine never downgrades an error into a default value and never
  returns a partial Output.

USAGE:
  out, err := eng.Calculate(in)
  switch {
  case engine.IsClientError(err):
      // 4xx
  case engine.IsIntegrity(err):
      // 5xx, data or programming defect
  }

SEE ALSO:
  - validate.go: Produces ValidationError at the input boundary
  - guard.go: Produces IntegrityError
*/
package engine

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for malformed or out-of-bounds input.
	ErrValidation = errors.New("validation failed")

	// ErrDomainConstraint is returned for logically inconsistent input,
	// such as starting work after the retirement year.
	ErrDomainConstraint = errors.New("domain constraint violated")

	// ErrMissingData is returned when a provider has no usable entry.
	ErrMissingData = errors.New("missing provider data")

	// ErrNumericIntegrity is returned when an intermediate value is
	// non-finite, out of physical range, or negative where it must not be.
	ErrNumericIntegrity = errors.New("numeric integrity violated")

	// ErrIncompleteBundle is returned when a Providers bundle lacks a provider.
	ErrIncompleteBundle = errors.New("incomplete provider bundle")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field found at once.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// ChronologyError is returned when work starts after the retirement year.
type ChronologyError struct {
	StartWorkYear  int
	RetirementYear int
}

func (e *ChronologyError) Error() string {
	return fmt.Sprintf("start of work %d is after retirement year %d", e.StartWorkYear, e.RetirementYear)
}

func (e *ChronologyError) Unwrap() error { return ErrDomainConstraint }

// AgeBoundsError is returned when the resolved retirement age is outside
// the bounds declared by the life-expectancy provider.
type AgeBoundsError struct {
	Gender Gender
	Age    int
	Min    int
	Max    int
}

func (e *AgeBoundsError) Error() string {
	return fmt.Sprintf("retirement age %d outside [%d, %d] for gender %s", e.Age, e.Min, e.Max, e.Gender)
}

func (e *AgeBoundsError) Unwrap() error { return ErrDomainConstraint }

// MissingDataError names the provider and the lookup key that had no entry.
type MissingDataError struct {
	Provider string
	Key      string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("missing provider data: %s has no entry for %s", e.Provider, e.Key)
}

func (e *MissingDataError) Unwrap() error { return ErrMissingData }

// IntegrityError reports an impossible intermediate value.
type IntegrityError struct {
	Stage    string
	Quantity string
	Year     int
	Value    string
}

func (e *IntegrityError) Error() string {
	if e.Year != 0 {
		return fmt.Sprintf("numeric integrity violated in %s: %s = %s (year %d)", e.Stage, e.Quantity, e.Value, e.Year)
	}
	return fmt.Sprintf("numeric integrity violated in %s: %s = %s", e.Stage, e.Quantity, e.Value)
}

func (e *IntegrityError) Unwrap() error { return ErrNumericIntegrity }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrDomainConstraint)
}

// IsMissingData returns true if a provider had no entry for a period.
func IsMissingData(err error) bool {
	return errors.Is(err, ErrMissingData)
}

// IsIntegrity returns true for numeric-integrity failures.
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrNumericIntegrity)
}
