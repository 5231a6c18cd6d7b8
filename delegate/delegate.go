// Package delegate implements a multicast delegate in the style of a
// game engine's event dispatch: listeners are (object, method) pairs
// bound through weak references, invoked in registration order, and
// skipped once their object has been destroyed.
//
// Three delegate types cover the supported arities. Which one you
// declare fixes the broadcast signature at compile time:
//
//	var OnJump delegate.Delegate
//	var OnHealthChanged delegate.Delegate1[int]
//	var OnMoved delegate.Delegate2[float32, float32]
//
// Operations are declared once, at package level, from a method
// expression; the declared value is the operation's identity:
//
//	var opTakeHit = delegate.NewOp1("Player.TakeHit", (*Player).TakeHit)
//
// Registering the same (target, op) pair twice is a no-op, so a
// subscriber fires at most once per broadcast. A binding whose target
// has been destroyed is skipped silently during Broadcast and stays in
// the registry until Remove, RemoveAll or RemoveExpired drops it.
//
// A delegate performs no internal locking: register, remove and
// broadcast from one goroutine, or guard the delegate yourself. The one
// mutation that may safely race with a broadcast is a subscriber being
// destroyed on another goroutine; the weak reference's lock handles
// that. Broadcast does not contain subscriber panics: a panicking
// subscriber propagates to the caller and the remaining subscribers are
// not invoked.
package delegate

import "delegates/ref"

// Op identifies one zero-parameter method on subscriber type T.
// Declare it once and reuse the value: pointer equality of declared
// Ops is what duplicate suppression, Remove and IsBound match on.
type Op[T any] struct {
	name string
	call func(*T)
}

// NewOp declares an operation from a method expression, e.g.
// NewOp("Player.Jump", (*Player).Jump). A nil method yields nil.
func NewOp[T any](name string, call func(*T)) *Op[T] {
	if call == nil {
		return nil
	}
	return &Op[T]{name: name, call: call}
}

// Name returns the label given at declaration.
func (o *Op[T]) Name() string {
	return o.name
}

// binding is the type-erased view of one stored subscription, shared by
// every arity.
type binding interface {
	// matches compares identity: the target's UID and the declared op.
	matches(target uint64, op any) bool
	// expired reports whether the target has been destroyed.
	expired() bool
}

func findBound[E binding](entries []E, target uint64, op any) bool {
	for _, e := range entries {
		if e.matches(target, op) {
			return true
		}
	}
	return false
}

// removeBound drops the single entry matching (target, op). The
// registry never holds two entries with equal identity, so one pass is
// enough.
func removeBound[E binding](entries []E, target uint64, op any) []E {
	for i, e := range entries {
		if e.matches(target, op) {
			return append(entries[:i], entries[i+1:]...)
		}
	}
	return entries
}

// pruneExpired filters out dead entries in place, preserving order.
func pruneExpired[E binding](entries []E) []E {
	live := entries[:0]
	for _, e := range entries {
		if !e.expired() {
			live = append(live, e)
		}
	}
	if len(live) == 0 {
		return nil
	}
	return live
}

// instance pairs a weak subscriber reference with a bound
// zero-parameter operation.
type instance[T any] struct {
	target ref.Weak[T]
	op     *Op[T]
}

func (in *instance[T]) matches(target uint64, op any) bool {
	return in.target.UID() == target && any(in.op) == op
}

func (in *instance[T]) expired() bool {
	return in.target.Expired()
}

func (in *instance[T]) invoke() {
	strong, ok := in.target.Lock()
	if !ok {
		return
	}
	in.op.call(strong.Get())
	strong.Release()
}

// caller is a binding that can be invoked without arguments.
type caller interface {
	binding
	invoke()
}

// Delegate is a multicast delegate whose Broadcast takes no arguments.
// The zero value is ready to use.
type Delegate struct {
	bindings []caller
}

// Add registers op on target. Invalid targets and nil ops are ignored,
// and an already-bound (target, op) pair is left alone, so Add is
// idempotent.
func Add[T any](d *Delegate, target ref.Shared[T], op *Op[T]) {
	if d == nil || !target.Valid() || op == nil {
		return
	}
	if findBound(d.bindings, target.UID(), any(op)) {
		return
	}
	d.bindings = append(d.bindings, &instance[T]{target: target.Downgrade(), op: op})
}

// Remove drops the binding matching (target, op) exactly. Absent pairs
// are a no-op.
func Remove[T any](d *Delegate, target ref.Shared[T], op *Op[T]) {
	if d == nil || !target.Valid() || op == nil {
		return
	}
	d.bindings = removeBound(d.bindings, target.UID(), any(op))
}

// IsBound reports whether (target, op) is registered. A binding whose
// target has been destroyed still counts as bound until it is removed;
// identity outlives the target.
func IsBound[T any](d *Delegate, target ref.Shared[T], op *Op[T]) bool {
	if d == nil || !target.Valid() || op == nil {
		return false
	}
	return findBound(d.bindings, target.UID(), any(op))
}

// RemoveAll empties the registry.
func (d *Delegate) RemoveAll() {
	d.bindings = nil
}

// Len returns the number of stored bindings, expired ones included.
func (d *Delegate) Len() int {
	return len(d.bindings)
}

// RemoveExpired prunes bindings whose target has been destroyed.
// Broadcast never prunes on its own; call this for housekeeping.
func (d *Delegate) RemoveExpired() {
	d.bindings = pruneExpired(d.bindings)
}

// Broadcast invokes every live binding in registration order. The
// binding list is snapshotted on entry, so callbacks may add or remove
// bindings on the same delegate: additions fire from the next broadcast
// on, and a binding removed mid-broadcast can still fire once.
func (d *Delegate) Broadcast() {
	snapshot := make([]caller, len(d.bindings))
	copy(snapshot, d.bindings)
	for _, b := range snapshot {
		if !b.expired() {
			b.invoke()
		}
	}
}
