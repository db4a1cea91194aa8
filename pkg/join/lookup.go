// Package join builds lookup mappings over fetched collections and
// resolves relationship references between them.
package join

import (
	"fmt"
)

// Unresolved is the display marker reports use for a relationship
// reference that cannot be resolved. The historical reports printed
// "unknown" rather than aborting, and downstream tooling greps for it.
const Unresolved = "unknown"

// DuplicateKeyError reports a key collision in strict mode.
type DuplicateKeyError struct {
	Key string
}

// Error implements the error interface.
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q in lookup", e.Key)
}

// Option configures BuildLookup.
type Option func(*options)

type options struct {
	strict bool
}

// Strict makes BuildLookup fail with *DuplicateKeyError on a key
// collision instead of keeping the last-seen record. The tolerant
// default matches the platform's own behavior (GUIDs are unique), but
// strict mode surfaces data inconsistencies a foundation operator may
// want to know about.
func Strict() Option {
	return func(o *options) { o.strict = true }
}

// Lookup maps keys to records for O(1) relationship resolution.
// Immutable once built.
type Lookup[T any] struct {
	m map[string]T
}

// BuildLookup maps each record to a key via keyFn. Duplicate keys keep
// the last-seen record unless Strict is given.
func BuildLookup[T any](items []T, keyFn func(T) string, opts ...Option) (*Lookup[T], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	m := make(map[string]T, len(items))
	for _, item := range items {
		key := keyFn(item)
		if o.strict {
			if _, exists := m[key]; exists {
				return nil, &DuplicateKeyError{Key: key}
			}
		}
		m[key] = item
	}

	return &Lookup[T]{m: m}, nil
}

// Resolve returns the record for key. ok is false when the key is
// absent; resolution never panics, so multi-hop joins can chain
// Resolve calls and tolerate a broken hop.
func (l *Lookup[T]) Resolve(key string) (T, bool) {
	v, ok := l.m[key]
	return v, ok
}

// Len returns the number of distinct keys.
func (l *Lookup[T]) Len() int {
	return len(l.m)
}

// NameOr resolves key through the lookup and projects a display name
// from the record, substituting the Unresolved marker when the key is
// absent (or empty, the unset-relationship case).
func NameOr[T any](l *Lookup[T], key string, nameFn func(T) string) string {
	if key == "" {
		return Unresolved
	}
	v, ok := l.Resolve(key)
	if !ok {
		return Unresolved
	}
	return nameFn(v)
}
