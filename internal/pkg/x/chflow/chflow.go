// Package chflow holds context-aware channel helpers. Every helper gives up
// as soon as its context is done.
package chflow

import "context"

// Receive returns the next value of ch. ok is false when ctx is done first
// or ch is closed.
func Receive[T any](ctx context.Context, ch <-chan T) (value T, ok bool) {
	select {
	case <-ctx.Done():
		return value, false
	case value, ok = <-ch:
		return value, ok
	}
}

// Each calls fn for every value received on ch. It returns ctx.Err() when
// ctx is done, nil when ch is closed, or the first error fn returns.
func Each[T any](ctx context.Context, ch <-chan T, fn func(T) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case value, ok := <-ch:
			if !ok {
				return nil
			}
			if err := fn(value); err != nil {
				return err
			}
		}
	}
}
