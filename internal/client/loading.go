package client

import "sync/atomic"

// Loading is an in-flight flag for UI spinners
type Loading struct {
	active atomic.Bool
}

// Active reports whether a wrapped call is running
func (l *Loading) Active() bool {
	return l.active.Load()
}

// WithLoading raises l for the duration of fn. The flag drops exactly once
// when fn returns or panics, and fn's result and error pass through unchanged.
func WithLoading[T any](l *Loading, fn func() (T, error)) (T, error) {
	l.active.Store(true)
	defer l.active.Store(false)
	return fn()
}
