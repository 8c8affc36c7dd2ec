package types

// OneOrMany holds a parameter that may be given once (applying to every
// locator of a dependency) or once per locator. The plural form is paired
// with locators by position; length agreement is checked when the
// dependency is validated, not when the value is used.
type OneOrMany[T any] struct {
	single *T
	many   []T
}

// One creates a singular value
func One[T any](v T) OneOrMany[T] {
	return OneOrMany[T]{single: &v}
}

// PerLocator creates a per-locator sequence of values
func PerLocator[T any](vs ...T) OneOrMany[T] {
	return OneOrMany[T]{many: vs}
}

// IsZero reports whether no value was set at all
func (o OneOrMany[T]) IsZero() bool {
	return o.single == nil && o.many == nil
}

// IsSingle reports whether the value was given once
func (o OneOrMany[T]) IsSingle() bool {
	return o.single != nil
}

// Len returns the number of values carried: 1 for a singular value,
// the sequence length otherwise
func (o OneOrMany[T]) Len() int {
	if o.single != nil {
		return 1
	}
	return len(o.many)
}

// At returns the value paired with locator index i. A singular value is
// returned for every index.
func (o OneOrMany[T]) At(i int) T {
	if o.single != nil {
		return *o.single
	}
	return o.many[i]
}

// Values returns all carried values
func (o OneOrMany[T]) Values() []T {
	if o.single != nil {
		return []T{*o.single}
	}
	return o.many
}
