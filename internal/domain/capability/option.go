// Package capability models optional collaborators as explicit values so that
// an absent collaborator is a visible branch rather than a nil check.
package capability

// Option holds a collaborator that may be absent.
type Option[T any] struct {
	value T
	ok    bool
}

// Some wraps a present collaborator.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an absent collaborator.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Detect returns Some when v implements T, None otherwise.
func Detect[T any](v any) Option[T] {
	if v == nil {
		return None[T]()
	}
	if t, ok := v.(T); ok {
		return Some(t)
	}
	return None[T]()
}

// Get returns the collaborator and whether it is present.
func (o Option[T]) Get() (T, bool) { return o.value, o.ok }

// Present reports whether the collaborator is available.
func (o Option[T]) Present() bool { return o.ok }
