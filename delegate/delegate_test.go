package delegate

import (
	"testing"

	"delegates/ref"
)

// recorder appends its tag to a shared log so tests can assert
// invocation order.
type recorder struct {
	tag string
	log *[]string
}

func (r *recorder) fire() {
	*r.log = append(*r.log, r.tag)
}

var opFire = NewOp("recorder.fire", (*recorder).fire)

func newRecorder(tag string, log *[]string) ref.Shared[recorder] {
	return ref.NewShared(&recorder{tag: tag, log: log})
}

func TestAddInvokesOnBroadcast(t *testing.T) {
	var log []string
	var d Delegate

	r := newRecorder("a", &log)
	defer r.Release()

	Add(&d, r, opFire)
	d.Broadcast()

	if len(log) != 1 || log[0] != "a" {
		t.Errorf("expected one invocation of 'a', got %v", log)
	}
}

func TestAddDuplicateSuppressed(t *testing.T) {
	var log []string
	var d Delegate

	r := newRecorder("a", &log)
	defer r.Release()

	Add(&d, r, opFire)
	Add(&d, r, opFire)

	if d.Len() != 1 {
		t.Errorf("expected 1 binding after duplicate Add, got %d", d.Len())
	}

	d.Broadcast()
	if len(log) != 1 {
		t.Errorf("expected one invocation per broadcast, got %d", len(log))
	}
}

func TestAddDistinctOpsOnSameTarget(t *testing.T) {
	var log []string
	var d Delegate

	// A second op over the same method: distinct declaration, distinct
	// identity.
	opAgain := NewOp("recorder.fire2", (*recorder).fire)

	r := newRecorder("a", &log)
	defer r.Release()

	Add(&d, r, opFire)
	Add(&d, r, opAgain)

	if d.Len() != 2 {
		t.Errorf("distinct ops on one target should both bind, got %d", d.Len())
	}
}

func TestAddInvalidInputs(t *testing.T) {
	var log []string
	var d Delegate

	Add(&d, ref.Shared[recorder]{}, opFire)
	r := newRecorder("a", &log)
	defer r.Release()
	Add(&d, r, nil)

	if d.Len() != 0 {
		t.Errorf("invalid Add calls should be ignored, got %d bindings", d.Len())
	}
}

func TestBroadcastOrder(t *testing.T) {
	var log []string
	var d Delegate

	a := newRecorder("a", &log)
	b := newRecorder("b", &log)
	c := newRecorder("c", &log)
	defer a.Release()
	defer b.Release()
	defer c.Release()

	Add(&d, a, opFire)
	Add(&d, b, opFire)
	Add(&d, c, opFire)

	d.Broadcast()
	d.Broadcast()

	want := []string{"a", "b", "c", "a", "b", "c"}
	if len(log) != len(want) {
		t.Fatalf("expected %d invocations, got %d", len(want), len(log))
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("invocation %d: expected %q, got %q", i, want[i], log[i])
		}
	}
}

func TestBroadcastSkipsDestroyed(t *testing.T) {
	var log []string
	var d Delegate

	a := newRecorder("a", &log)
	b := newRecorder("b", &log)
	defer b.Release()

	Add(&d, a, opFire)
	Add(&d, b, opFire)

	a.Release()
	d.Broadcast()

	if len(log) != 1 || log[0] != "b" {
		t.Errorf("destroyed target should be skipped, got %v", log)
	}
	if d.Len() != 2 {
		t.Errorf("broadcast must not prune, expected 2 bindings, got %d", d.Len())
	}
}

func TestRemove(t *testing.T) {
	var log []string
	var d Delegate

	a := newRecorder("a", &log)
	b := newRecorder("b", &log)
	defer a.Release()
	defer b.Release()

	Add(&d, a, opFire)
	Add(&d, b, opFire)

	Remove(&d, a, opFire)
	d.Broadcast()

	if len(log) != 1 || log[0] != "b" {
		t.Errorf("removed binding must not fire, got %v", log)
	}
	if IsBound(&d, a, opFire) {
		t.Error("IsBound should be false after Remove")
	}
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	var log []string
	var d Delegate

	a := newRecorder("a", &log)
	b := newRecorder("b", &log)
	defer a.Release()
	defer b.Release()

	Add(&d, a, opFire)
	Remove(&d, b, opFire)

	if d.Len() != 1 {
		t.Errorf("removing an absent pair should change nothing, got %d bindings", d.Len())
	}
}

func TestRemoveAll(t *testing.T) {
	var log []string
	var d Delegate

	a := newRecorder("a", &log)
	b := newRecorder("b", &log)
	defer a.Release()
	defer b.Release()

	Add(&d, a, opFire)
	Add(&d, b, opFire)
	d.RemoveAll()

	if IsBound(&d, a, opFire) || IsBound(&d, b, opFire) {
		t.Error("IsBound should be false for every pair after RemoveAll")
	}

	d.Broadcast()
	if len(log) != 0 {
		t.Errorf("broadcast after RemoveAll should invoke nothing, got %v", log)
	}
}

func TestIsBoundSurvivesTargetDeath(t *testing.T) {
	var log []string
	var d Delegate

	a := newRecorder("a", &log)
	keep := a.Clone() // identity handle for queries after release

	Add(&d, a, opFire)
	a.Release()

	// keep still holds the object; release it too so the target is
	// actually destroyed, then query through the (now dead) handle.
	keep.Release()

	if !IsBound(&d, keep, opFire) {
		t.Error("expired binding should still report bound until removed")
	}

	// Duplicate suppression keeps working against the dead binding.
	Add(&d, keep, opFire)
	if d.Len() != 1 {
		t.Errorf("re-adding over an expired binding should be suppressed, got %d", d.Len())
	}

	d.RemoveExpired()
	if IsBound(&d, keep, opFire) {
		t.Error("IsBound should be false once the expired binding is pruned")
	}
}

func TestRemoveExpiredKeepsOrder(t *testing.T) {
	var log []string
	var d Delegate

	a := newRecorder("a", &log)
	b := newRecorder("b", &log)
	c := newRecorder("c", &log)
	defer a.Release()
	defer c.Release()

	Add(&d, a, opFire)
	Add(&d, b, opFire)
	Add(&d, c, opFire)

	b.Release()
	d.RemoveExpired()

	if d.Len() != 2 {
		t.Fatalf("expected 2 bindings after pruning, got %d", d.Len())
	}

	d.Broadcast()
	want := []string{"a", "c"}
	for i := range want {
		if i >= len(log) || log[i] != want[i] {
			t.Fatalf("expected survivors in order %v, got %v", want, log)
		}
	}
}

// reentrant subscribers mutate the delegate from inside a broadcast.

type reentrant struct {
	tag string
	log *[]string
	d   *Delegate

	add      ref.Shared[recorder]
	remove   ref.Shared[recorder]
	clearAll bool
}

func (r *reentrant) fire() {
	*r.log = append(*r.log, r.tag)
	switch {
	case r.clearAll:
		r.d.RemoveAll()
	case r.add.Valid():
		Add(r.d, r.add, opFire)
	case r.remove.Valid():
		Remove(r.d, r.remove, opFire)
	}
}

var opReentrant = NewOp("reentrant.fire", (*reentrant).fire)

func TestReentrantAddDuringBroadcast(t *testing.T) {
	var log []string
	var d Delegate

	late := newRecorder("late", &log)
	defer late.Release()

	first := ref.NewShared(&reentrant{tag: "first", log: &log, d: &d, add: late})
	defer first.Release()

	Add(&d, first, opReentrant)

	d.Broadcast()
	if len(log) != 1 || log[0] != "first" {
		t.Fatalf("binding added mid-broadcast must not fire in that broadcast, got %v", log)
	}

	d.Broadcast()
	want := []string{"first", "first", "late"}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("expected %v, got %v", want, log)
			break
		}
	}
}

func TestReentrantRemoveDuringBroadcast(t *testing.T) {
	var log []string
	var d Delegate

	victim := newRecorder("victim", &log)
	defer victim.Release()

	first := ref.NewShared(&reentrant{tag: "first", log: &log, d: &d, remove: victim})
	defer first.Release()

	Add(&d, first, opReentrant)
	Add(&d, victim, opFire)

	// Snapshot semantics: the victim was in the snapshot, so it still
	// fires once in the broadcast that removed it.
	d.Broadcast()
	if len(log) != 2 || log[1] != "victim" {
		t.Fatalf("expected snapshot to still fire the removed binding, got %v", log)
	}

	d.Broadcast()
	if len(log) != 3 || log[2] != "first" {
		t.Errorf("removed binding must not fire in later broadcasts, got %v", log)
	}
}

func TestReentrantRemoveAllDuringBroadcast(t *testing.T) {
	var log []string
	var d Delegate

	first := ref.NewShared(&reentrant{tag: "first", log: &log, d: &d, clearAll: true})
	defer first.Release()
	second := newRecorder("second", &log)
	defer second.Release()

	Add(&d, first, opReentrant)
	Add(&d, second, opFire)

	d.Broadcast()
	if len(log) != 2 {
		t.Errorf("snapshot should finish the in-progress broadcast, got %v", log)
	}

	d.Broadcast()
	if len(log) != 2 {
		t.Errorf("broadcast after reentrant RemoveAll should invoke nothing, got %v", log)
	}
	if d.Len() != 0 {
		t.Errorf("expected empty registry, got %d bindings", d.Len())
	}
}

// counter is the shared-counter subscriber from the end-to-end
// scenario: two subscribers bump one counter by different amounts.
type counter struct {
	total *int
	step  int
}

func (c *counter) bump() {
	*c.total += c.step
}

var opBump = NewOp("counter.bump", (*counter).bump)

func TestEndToEndScore(t *testing.T) {
	var total int
	var d Delegate

	s1 := ref.NewShared(&counter{total: &total, step: 1})
	s2 := ref.NewShared(&counter{total: &total, step: 10})
	defer s2.Release()

	Add(&d, s1, opBump)
	Add(&d, s2, opBump)

	d.Broadcast()
	if total != 11 {
		t.Fatalf("expected 11 after first broadcast, got %d", total)
	}

	s1.Release()
	d.Broadcast()
	if total != 21 {
		t.Fatalf("expected 21 after destroying s1, got %d", total)
	}

	Remove(&d, s2, opBump)
	d.Broadcast()
	if total != 21 {
		t.Fatalf("expected 21 after removing s2, got %d", total)
	}
}
