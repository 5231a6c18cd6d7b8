package delegate

import "delegates/ref"

// Op1 identifies one single-parameter method on subscriber type T.
// Same declaration and equality rules as Op.
type Op1[T, A any] struct {
	name string
	call func(*T, A)
}

// NewOp1 declares a one-parameter operation from a method expression,
// e.g. NewOp1("Player.TakeHit", (*Player).TakeHit).
func NewOp1[T, A any](name string, call func(*T, A)) *Op1[T, A] {
	if call == nil {
		return nil
	}
	return &Op1[T, A]{name: name, call: call}
}

// Name returns the label given at declaration.
func (o *Op1[T, A]) Name() string {
	return o.name
}

type instance1[T, A any] struct {
	target ref.Weak[T]
	op     *Op1[T, A]
}

func (in *instance1[T, A]) matches(target uint64, op any) bool {
	return in.target.UID() == target && any(in.op) == op
}

func (in *instance1[T, A]) expired() bool {
	return in.target.Expired()
}

func (in *instance1[T, A]) invoke(arg A) {
	strong, ok := in.target.Lock()
	if !ok {
		return
	}
	in.op.call(strong.Get(), arg)
	strong.Release()
}

type caller1[A any] interface {
	binding
	invoke(A)
}

// Delegate1 is a multicast delegate whose Broadcast takes one argument
// of type A. The zero value is ready to use.
type Delegate1[A any] struct {
	bindings []caller1[A]
}

// Add1 registers op on target; idempotent, same rules as Add.
func Add1[T, A any](d *Delegate1[A], target ref.Shared[T], op *Op1[T, A]) {
	if d == nil || !target.Valid() || op == nil {
		return
	}
	if findBound(d.bindings, target.UID(), any(op)) {
		return
	}
	d.bindings = append(d.bindings, &instance1[T, A]{target: target.Downgrade(), op: op})
}

// Remove1 drops the binding matching (target, op) exactly; no-op when
// absent.
func Remove1[T, A any](d *Delegate1[A], target ref.Shared[T], op *Op1[T, A]) {
	if d == nil || !target.Valid() || op == nil {
		return
	}
	d.bindings = removeBound(d.bindings, target.UID(), any(op))
}

// IsBound1 reports whether (target, op) is registered, expired targets
// included.
func IsBound1[T, A any](d *Delegate1[A], target ref.Shared[T], op *Op1[T, A]) bool {
	if d == nil || !target.Valid() || op == nil {
		return false
	}
	return findBound(d.bindings, target.UID(), any(op))
}

// RemoveAll empties the registry.
func (d *Delegate1[A]) RemoveAll() {
	d.bindings = nil
}

// Len returns the number of stored bindings, expired ones included.
func (d *Delegate1[A]) Len() int {
	return len(d.bindings)
}

// RemoveExpired prunes bindings whose target has been destroyed.
func (d *Delegate1[A]) RemoveExpired() {
	d.bindings = pruneExpired(d.bindings)
}

// Broadcast invokes every live binding in registration order with arg.
// Same snapshot semantics as Delegate.Broadcast.
func (d *Delegate1[A]) Broadcast(arg A) {
	snapshot := make([]caller1[A], len(d.bindings))
	copy(snapshot, d.bindings)
	for _, b := range snapshot {
		if !b.expired() {
			b.invoke(arg)
		}
	}
}
