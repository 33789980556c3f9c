// Package filter provides generic key/value filtering used to narrow down
// health verdicts on the command line.
package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Predicate defines a function that returns true if the given item matches a condition.
type Predicate[T any] func(item T, filterValue string) bool

// Provider is a generic function type that encapsulates the logic for extracting
// a value of type V from an item of type T.
type Provider[T any, V any] func(T) V

// StringValueProvider extracts a single string value from an item of type T.
type StringValueProvider[T any] Provider[T, string]

// StringValuesProvider extracts a slice of string values from an item of type T.
type StringValuesProvider[T any] Provider[T, []string]

// Options holds configuration for filtering behavior.
type Options[T any] struct {
	matchers map[string]Predicate[T]
}

// Option configures filter Options.
type Option[T any] func(*Options[T]) error

// NewOptions creates filter Options with defaults and applies given options.
func NewOptions[T any](opt ...Option[T]) (Options[T], error) {
	opts := Options[T]{
		matchers: make(map[string]Predicate[T]),
	}

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return Options[T]{}, err
		}
	}

	return opts, nil
}

// WithMatcher adds or overrides a matcher for a filter key.
func WithMatcher[T any](key string, value Predicate[T]) Option[T] {
	return func(o *Options[T]) error {
		o.matchers[NormalizeString(key)] = value
		return nil
	}
}

// Keys returns the sorted filter keys this Options supports.
func (o Options[T]) Keys() []string {
	keys := slices.Collect(maps.Keys(o.matchers))
	slices.Sort(keys)
	return keys
}

// Apply returns the items matching every supplied key=value filter.
// An unknown filter key is an error rather than a silent no-op.
func (o Options[T]) Apply(items []T, filters map[string]string) ([]T, error) {
	if len(filters) == 0 {
		return items, nil
	}

	for key := range filters {
		if _, ok := o.matchers[NormalizeString(key)]; !ok {
			return nil, fmt.Errorf("unsupported filter key %q, allowed: %s", key, strings.Join(o.Keys(), ", "))
		}
	}

	matched := make([]T, 0, len(items))
	for _, item := range items {
		if o.matches(item, filters) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// matches reports whether all filters accept the item.
func (o Options[T]) matches(item T, filters map[string]string) bool {
	for key, val := range filters {
		predicate := o.matchers[NormalizeString(key)]
		if !predicate(item, val) {
			return false
		}
	}
	return true
}

// NormalizeString can be used to normalize a string value for filtering/comparison.
// The value is made lowercase and has any leading and/or trailing whitespace removed.
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeSlice can be used to normalize all values of a slice, returning a new slice.
// The values are normalized with the same behavior as NormalizeString.
func NormalizeSlice(s []string) []string {
	s2 := make([]string, len(s))
	for i := range s {
		s2[i] = NormalizeString(s[i])
	}
	return s2
}

// Equals returns a Predicate that checks if the value extracted by the provider
// exactly matches the filter value (case-insensitive, normalized).
func Equals[T any](provider StringValueProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		return NormalizeString(provider(item)) == NormalizeString(val)
	}
}

// Partial returns a Predicate that checks if the value extracted by the provider
// contains the filter value as a substring (case-insensitive, normalized).
func Partial[T any](provider StringValueProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		return strings.Contains(NormalizeString(provider(item)), NormalizeString(val))
	}
}

// HasAny returns a Predicate that checks if the values extracted by the provider include *ANY* of
// the comma-separated values in the filter string (case-insensitive, normalized).
func HasAny[T any](provider StringValuesProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		required := NormalizeSlice(strings.Split(val, ","))
		allowed := make(map[string]struct{}, len(required))

		for _, v := range required {
			allowed[v] = struct{}{}
		}

		for _, v := range provider(item) {
			if _, ok := allowed[NormalizeString(v)]; ok {
				return true
			}
		}
		return false
	}
}
