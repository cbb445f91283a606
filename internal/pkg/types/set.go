package types

import (
	"cmp"
	"maps"
	"slices"
)

// Set is a generic hash set for comparable types. Methods like Add modify
// the set in place.
type Set[T comparable] map[T]struct{}

// NewSet creates a new Set holding the provided elements.
func NewSet[T comparable](data ...T) Set[T] {
	set := make(Set[T], len(data))
	set.Add(data...)
	return set
}

// Add inserts one or more elements into the set.
func (s Set[T]) Add(values ...T) {
	for _, val := range values {
		s[val] = struct{}{}
	}
}

// Has reports whether val is in the set. A nil set contains nothing.
func (s Set[T]) Has(val T) bool {
	_, ok := s[val]
	return ok
}

// SortedSlice returns the elements of s in ascending order.
func SortedSlice[T cmp.Ordered](s Set[T]) []T {
	return slices.Sorted(maps.Keys(s))
}
