// Package aggregate provides the filtering, projection and totaling
// primitives the report commands share. All functions are pure; they
// never mutate their inputs and predicates must be total.
package aggregate

import (
	"fmt"
	"time"
)

// DateParseError reports a timestamp the platform returned in a shape
// we do not accept. The raw value is preserved so the operator can see
// exactly what the API sent.
type DateParseError struct {
	Field string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *DateParseError) Error() string {
	return fmt.Sprintf("field %s: cannot parse timestamp %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying time parse error.
func (e *DateParseError) Unwrap() error {
	return e.Err
}

// Collect returns the projection of every item matching pred, in input
// order. A nil or empty input yields an empty non-nil slice.
func Collect[T, R any](items []T, pred func(T) bool, project func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, project(item))
		}
	}
	return out
}

// Sum totals an optional integer field across items. A nil field value
// counts as zero, so a collection reporting [5, null, 3] sums to 8.
func Sum[T any](items []T, field func(T) *int) int {
	total := 0
	for _, item := range items {
		if v := field(item); v != nil {
			total += *v
		}
	}
	return total
}

// ParseTimestamp parses an RFC 3339 timestamp from the API. Anything
// that does not parse is a hard error; silently substituting a zero
// time would corrupt staleness calculations.
func ParseTimestamp(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, &DateParseError{Field: field, Value: value, Err: err}
	}
	return t, nil
}

// OlderThan reports whether t is strictly before cutoff. A timestamp
// exactly at the cutoff does not qualify.
func OlderThan(t, cutoff time.Time) bool {
	return t.Before(cutoff)
}
