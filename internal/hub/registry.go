package hub

import "sync"

type subKey struct {
	userID  string
	orderID int64
}

// subscriber accepts a serialized frame without blocking; false means the
// frame was dropped (connection closed or its buffer is full).
type subscriber interface {
	enqueue(frame []byte) bool
}

// registry maps (userId, orderId) to live subscribers. A subscriber holds
// at most one binding; only the owning connection's goroutine binds or
// unbinds it, so there is a single writer per key entry.
type registry struct {
	mu   sync.RWMutex
	subs map[subKey]map[subscriber]struct{}
	keys map[subscriber]subKey
}

func newRegistry() *registry {
	return &registry{
		subs: make(map[subKey]map[subscriber]struct{}),
		keys: make(map[subscriber]subKey),
	}
}

// bind registers s for k, replacing any previous binding s held.
func (r *registry) bind(s subscriber, k subKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unbindLocked(s)
	set, ok := r.subs[k]
	if !ok {
		set = make(map[subscriber]struct{})
		r.subs[k] = set
	}
	set[s] = struct{}{}
	r.keys[s] = k
}

func (r *registry) unbind(s subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unbindLocked(s)
}

func (r *registry) unbindLocked(s subscriber) {
	k, ok := r.keys[s]
	if !ok {
		return
	}
	delete(r.keys, s)
	set := r.subs[k]
	delete(set, s)
	if len(set) == 0 {
		delete(r.subs, k)
	}
}

// snapshot returns the current subscribers for k. Broadcast iterates the
// snapshot outside the lock, so one slow send cannot stall registration.
func (r *registry) snapshot(k subKey) []subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.subs[k]
	out := make([]subscriber, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}
