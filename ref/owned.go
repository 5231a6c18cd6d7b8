package ref

// Owned is an exclusively owned handle to a value with an optional
// finalizer, released deterministically with Close. Use it through a
// pointer; transferring ownership means calling Release on one handle
// and adopting the result elsewhere.
type Owned[T any] struct {
	val *T
	fin func(*T)
}

// NewOwned takes exclusive ownership of val.
func NewOwned[T any](val *T) Owned[T] {
	return Owned[T]{val: val}
}

// NewOwnedFinalizer is NewOwned with a finalizer that runs when the
// value is replaced by Reset or dropped by Close.
func NewOwnedFinalizer[T any](val *T, finalize func(*T)) Owned[T] {
	return Owned[T]{val: val, fin: finalize}
}

// Get returns the owned value, or nil for an empty handle.
func (o *Owned[T]) Get() *T {
	return o.val
}

// Valid reports whether the handle currently owns a value.
func (o *Owned[T]) Valid() bool {
	return o.val != nil
}

// Release gives up ownership without running the finalizer and returns
// the value. The handle is empty afterwards.
func (o *Owned[T]) Release() *T {
	v := o.val
	o.val = nil
	return v
}

// Reset finalizes the current value, if any, and adopts val in its
// place.
func (o *Owned[T]) Reset(val *T) {
	if o.val != nil && o.fin != nil {
		o.fin(o.val)
	}
	o.val = val
}

// Close finalizes and empties the handle. Closing an empty handle is a
// no-op, so Close is safe to defer unconditionally.
func (o *Owned[T]) Close() {
	o.Reset(nil)
}
