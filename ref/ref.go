// Package ref provides small deterministic ownership helpers: an
// exclusively owned handle (Owned), a counted shared reference (Shared),
// and a weak reference (Weak) that can tell whether its referent has
// been destroyed without keeping it alive.
//
// "Destroyed" is a semantic state, not a memory state: when the last
// strong reference is released the referent's finalizer runs and every
// weak reference expires, even though the Go runtime may keep the
// memory around. This gives object-lifetime events (despawn, close,
// teardown) a single observable moment.
package ref

import (
	"sync"
	"sync/atomic"
)

// uidCounter hands out process-unique identities for control blocks.
// UID 0 is reserved for the zero value of Shared and Weak.
var uidCounter atomic.Uint64

// control is the bookkeeping block shared by every Shared and Weak
// referring to the same object. The mutex makes "decrement, and destroy
// at zero" a single step, so a Weak.Lock can never succeed on a
// referent that is already being destroyed.
type control struct {
	mu    sync.Mutex
	count int
	dead  bool
	uid   uint64
	fin   func()
}

// Shared is a counted strong reference to a value owned jointly by all
// of its copies. Every NewShared, Clone and successful Weak.Lock must
// be matched by exactly one Release; using a reference after its
// matching Release is a misuse.
type Shared[T any] struct {
	val *T
	ctl *control
}

// NewShared takes shared ownership of val with an initial count of one.
// A nil val yields the invalid zero value.
func NewShared[T any](val *T) Shared[T] {
	return NewSharedFinalizer(val, nil)
}

// NewSharedFinalizer is NewShared with a finalizer that runs exactly
// once, when the last strong reference is released.
func NewSharedFinalizer[T any](val *T, finalize func(*T)) Shared[T] {
	if val == nil {
		return Shared[T]{}
	}
	ctl := &control{count: 1, uid: uidCounter.Add(1)}
	if finalize != nil {
		ctl.fin = func() { finalize(val) }
	}
	return Shared[T]{val: val, ctl: ctl}
}

// Valid reports whether s refers to anything at all. The zero value
// does not.
func (s Shared[T]) Valid() bool {
	return s.ctl != nil
}

// Get returns the referent. Only meaningful between acquiring the
// reference and its matching Release.
func (s Shared[T]) Get() *T {
	return s.val
}

// UID returns the process-unique identity of the referent, stable for
// its whole lifetime including after destruction. 0 for the zero value.
func (s Shared[T]) UID() uint64 {
	if s.ctl == nil {
		return 0
	}
	return s.ctl.uid
}

// Alive reports whether the referent has not been destroyed yet.
func (s Shared[T]) Alive() bool {
	if s.ctl == nil {
		return false
	}
	s.ctl.mu.Lock()
	defer s.ctl.mu.Unlock()
	return !s.ctl.dead
}

// Clone acquires an additional strong reference to the same referent.
// Cloning the zero value, or a reference whose referent is already
// destroyed, yields the invalid zero value.
func (s Shared[T]) Clone() Shared[T] {
	if s.ctl == nil {
		return Shared[T]{}
	}
	s.ctl.mu.Lock()
	defer s.ctl.mu.Unlock()
	if s.ctl.dead {
		return Shared[T]{}
	}
	s.ctl.count++
	return s
}

// Release drops one strong reference. When the count reaches zero the
// referent is destroyed: the finalizer runs and every Weak expires.
// Releasing the zero value, or releasing more times than references
// were acquired, is a no-op.
func (s Shared[T]) Release() {
	if s.ctl == nil {
		return
	}
	s.ctl.mu.Lock()
	if s.ctl.dead || s.ctl.count == 0 {
		s.ctl.mu.Unlock()
		return
	}
	s.ctl.count--
	if s.ctl.count > 0 {
		s.ctl.mu.Unlock()
		return
	}
	s.ctl.dead = true
	fin := s.ctl.fin
	s.ctl.fin = nil
	s.ctl.mu.Unlock()
	if fin != nil {
		fin()
	}
}

// Downgrade returns a weak reference to the same referent. It does not
// consume or count against s.
func (s Shared[T]) Downgrade() Weak[T] {
	return Weak[T]{val: s.val, ctl: s.ctl}
}

// Weak observes an object owned elsewhere through Shared references.
// It never extends the object's lifetime; once the last strong
// reference is released, the weak reference reports expired forever.
// The zero value is permanently expired.
type Weak[T any] struct {
	val *T
	ctl *control
}

// Expired reports whether the referent has been destroyed (or the weak
// reference is the zero value).
func (w Weak[T]) Expired() bool {
	if w.ctl == nil {
		return true
	}
	w.ctl.mu.Lock()
	defer w.ctl.mu.Unlock()
	return w.ctl.dead
}

// Alive is the complement of Expired.
func (w Weak[T]) Alive() bool {
	return !w.Expired()
}

// UID returns the identity of the referent, matching the UID of every
// Shared for the same object. 0 for the zero value.
func (w Weak[T]) UID() uint64 {
	if w.ctl == nil {
		return 0
	}
	return w.ctl.uid
}

// Lock upgrades to a strong reference if the referent is still alive.
// The liveness check and the count increment happen under one lock, so
// a successful Lock never hands out a destroyed referent, and the
// referent cannot be destroyed until the returned reference is
// Released.
func (w Weak[T]) Lock() (Shared[T], bool) {
	if w.ctl == nil {
		return Shared[T]{}, false
	}
	w.ctl.mu.Lock()
	defer w.ctl.mu.Unlock()
	if w.ctl.dead {
		return Shared[T]{}, false
	}
	w.ctl.count++
	return Shared[T]{val: w.val, ctl: w.ctl}, true
}
