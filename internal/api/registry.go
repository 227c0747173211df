package api

import (
	"sync"
	"time"

	"github.com/vikrantan5/FitSphere-sub000/internal/booking"
)

// registry keeps at most one live value per browser session. Putting a new
// value hands the old one to onReplace; entries idle longer than ttl are
// swept on access.
type registry[T any] struct {
	mu        sync.Mutex
	entries   map[string]*entry[T]
	ttl       time.Duration
	onReplace func(T)
	now       func() time.Time
}

type entry[T any] struct {
	value   T
	touched time.Time
}

func newRegistry[T any](ttl time.Duration, onReplace func(T)) *registry[T] {
	return &registry[T]{
		entries:   make(map[string]*entry[T]),
		ttl:       ttl,
		onReplace: onReplace,
		now:       time.Now,
	}
}

func (r *registry[T]) Put(sid string, v T) {
	r.mu.Lock()
	old, had := r.entries[sid]
	r.entries[sid] = &entry[T]{value: v, touched: r.now()}
	r.sweepLocked()
	r.mu.Unlock()

	if had && r.onReplace != nil {
		r.onReplace(old.value)
	}
}

func (r *registry[T]) Get(sid string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	if !ok || r.now().Sub(e.touched) > r.ttl {
		var zero T
		return zero, false
	}
	e.touched = r.now()
	return e.value, true
}

func (r *registry[T]) Remove(sid string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	if !ok {
		var zero T
		return zero, false
	}
	delete(r.entries, sid)
	return e.value, true
}

func (r *registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *registry[T]) sweepLocked() {
	now := r.now()
	for sid, e := range r.entries {
		if now.Sub(e.touched) > r.ttl {
			delete(r.entries, sid)
		}
	}
}

// abandonWorkflow is the replace hook for booking attempts: the old attempt
// stops committing results of calls still in flight.
func abandonWorkflow(w *booking.Workflow) {
	w.Abandon()
}
