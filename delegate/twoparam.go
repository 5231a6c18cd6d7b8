package delegate

import "delegates/ref"

// Op2 identifies one two-parameter method on subscriber type T.
// Same declaration and equality rules as Op.
type Op2[T, A, B any] struct {
	name string
	call func(*T, A, B)
}

// NewOp2 declares a two-parameter operation from a method expression,
// e.g. NewOp2("Player.Moved", (*Player).Moved).
func NewOp2[T, A, B any](name string, call func(*T, A, B)) *Op2[T, A, B] {
	if call == nil {
		return nil
	}
	return &Op2[T, A, B]{name: name, call: call}
}

// Name returns the label given at declaration.
func (o *Op2[T, A, B]) Name() string {
	return o.name
}

type instance2[T, A, B any] struct {
	target ref.Weak[T]
	op     *Op2[T, A, B]
}

func (in *instance2[T, A, B]) matches(target uint64, op any) bool {
	return in.target.UID() == target && any(in.op) == op
}

func (in *instance2[T, A, B]) expired() bool {
	return in.target.Expired()
}

func (in *instance2[T, A, B]) invoke(a A, b B) {
	strong, ok := in.target.Lock()
	if !ok {
		return
	}
	in.op.call(strong.Get(), a, b)
	strong.Release()
}

type caller2[A, B any] interface {
	binding
	invoke(A, B)
}

// Delegate2 is a multicast delegate whose Broadcast takes two
// arguments, of types A and B. The zero value is ready to use.
type Delegate2[A, B any] struct {
	bindings []caller2[A, B]
}

// Add2 registers op on target; idempotent, same rules as Add.
func Add2[T, A, B any](d *Delegate2[A, B], target ref.Shared[T], op *Op2[T, A, B]) {
	if d == nil || !target.Valid() || op == nil {
		return
	}
	if findBound(d.bindings, target.UID(), any(op)) {
		return
	}
	d.bindings = append(d.bindings, &instance2[T, A, B]{target: target.Downgrade(), op: op})
}

// Remove2 drops the binding matching (target, op) exactly; no-op when
// absent.
func Remove2[T, A, B any](d *Delegate2[A, B], target ref.Shared[T], op *Op2[T, A, B]) {
	if d == nil || !target.Valid() || op == nil {
		return
	}
	d.bindings = removeBound(d.bindings, target.UID(), any(op))
}

// IsBound2 reports whether (target, op) is registered, expired targets
// included.
func IsBound2[T, A, B any](d *Delegate2[A, B], target ref.Shared[T], op *Op2[T, A, B]) bool {
	if d == nil || !target.Valid() || op == nil {
		return false
	}
	return findBound(d.bindings, target.UID(), any(op))
}

// RemoveAll empties the registry.
func (d *Delegate2[A, B]) RemoveAll() {
	d.bindings = nil
}

// Len returns the number of stored bindings, expired ones included.
func (d *Delegate2[A, B]) Len() int {
	return len(d.bindings)
}

// RemoveExpired prunes bindings whose target has been destroyed.
func (d *Delegate2[A, B]) RemoveExpired() {
	d.bindings = pruneExpired(d.bindings)
}

// Broadcast invokes every live binding in registration order with
// (a, b). Same snapshot semantics as Delegate.Broadcast.
func (d *Delegate2[A, B]) Broadcast(a A, b B) {
	snapshot := make([]caller2[A, B], len(d.bindings))
	copy(snapshot, d.bindings)
	for _, b2 := range snapshot {
		if !b2.expired() {
			b2.invoke(a, b)
		}
	}
}
