package types

import (
	"slices"
	"time"
)

// CachedList is a list stamped with the time it was fetched. A zero
// LastUpdated means the list was never fetched.
type CachedList[T any] struct {
	LastUpdated time.Time
	Items       []T
}

// NewCachedList returns a list fetched at now. It keeps its own copy of items.
func NewCachedList[T any](now time.Time, items []T) CachedList[T] {
	return CachedList[T]{LastUpdated: now, Items: slices.Clone(items)}
}

// Clone returns a copy whose Items can be modified without touching c.
func (c CachedList[T]) Clone() CachedList[T] {
	return CachedList[T]{LastUpdated: c.LastUpdated, Items: slices.Clone(c.Items)}
}

// IsFresh reports whether the list was fetched less than window before now.
func (c CachedList[T]) IsFresh(now time.Time, window time.Duration) bool {
	if c.LastUpdated.IsZero() {
		return false
	}

	return now.Sub(c.LastUpdated) < window
}

// IsZero reports whether the list is in its initial, never fetched shape.
func (c CachedList[T]) IsZero() bool {
	return c.LastUpdated.IsZero() && len(c.Items) == 0
}
