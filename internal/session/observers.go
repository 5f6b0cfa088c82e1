package session

import "sync"

// registry holds subscriber callbacks for one event type. Callbacks run
// outside the session lock, in registration order.
type registry[T any] struct {
	mu    sync.Mutex
	next  int
	order []int
	fns   map[int]func(T)
}

func (r *registry[T]) add(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fns == nil {
		r.fns = map[int]func(T){}
	}
	id := r.next
	r.next++
	r.fns[id] = fn
	r.order = append(r.order, id)
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.fns, id)
			for i, v := range r.order {
				if v == id {
					r.order = append(r.order[:i], r.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (r *registry[T]) emit(v T) {
	r.mu.Lock()
	fns := make([]func(T), 0, len(r.order))
	for _, id := range r.order {
		fns = append(fns, r.fns[id])
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}
