package hub

import "testing"

type fakeSub struct {
	frames [][]byte
	full   bool
}

func (f *fakeSub) enqueue(b []byte) bool {
	if f.full {
		return false
	}
	f.frames = append(f.frames, b)
	return true
}

func TestRegistry_BindSnapshotUnbind(t *testing.T) {
	r := newRegistry()
	k := subKey{userID: "42", orderID: 7}
	a, b := &fakeSub{}, &fakeSub{}

	r.bind(a, k)
	r.bind(b, k)
	if got := r.snapshot(k); len(got) != 2 {
		t.Fatalf("snapshot len = %d, want 2", len(got))
	}

	r.unbind(a)
	if got := r.snapshot(k); len(got) != 1 {
		t.Fatalf("snapshot after unbind = %d, want 1", len(got))
	}

	// unbinding a never-bound subscriber is a no-op
	r.unbind(&fakeSub{})
	if got := r.snapshot(k); len(got) != 1 {
		t.Fatalf("no-op unbind changed registry")
	}
}

func TestRegistry_RebindReplacesPriorBinding(t *testing.T) {
	r := newRegistry()
	k1 := subKey{userID: "42", orderID: 7}
	k2 := subKey{userID: "42", orderID: 8}
	s := &fakeSub{}

	r.bind(s, k1)
	r.bind(s, k2)

	if got := r.snapshot(k1); len(got) != 0 {
		t.Fatalf("old binding survived rebind")
	}
	if got := r.snapshot(k2); len(got) != 1 {
		t.Fatalf("new binding missing")
	}
}

func TestRegistry_SnapshotIsolatedPerKey(t *testing.T) {
	r := newRegistry()
	s := &fakeSub{}
	r.bind(s, subKey{userID: "42", orderID: 7})

	if got := r.snapshot(subKey{userID: "43", orderID: 7}); len(got) != 0 {
		t.Fatalf("subscriber leaked across user ids")
	}
	if got := r.snapshot(subKey{userID: "42", orderID: 8}); len(got) != 0 {
		t.Fatalf("subscriber leaked across order ids")
	}
}
