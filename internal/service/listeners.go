package service

import "sync"

// listenerSet is a subscriber registry shared by the in-memory stores.
// Notification iterates over a copy so listeners may unsubscribe or mutate the
// owning store while being notified.
type listenerSet struct {
	mu      sync.Mutex
	nextID  uint64
	entries map[uint64]func()
	order   []uint64
}

func newListenerSet() *listenerSet {
	return &listenerSet{entries: make(map[uint64]func())}
}

// add registers fn and returns an idempotent unsubscribe function.
func (l *listenerSet) add(fn func()) func() {
	if fn == nil {
		return func() {}
	}

	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.entries[id] = fn
	l.order = append(l.order, id)
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *listenerSet) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[id]; !ok {
		return
	}
	delete(l.entries, id)
	for i, candidate := range l.order {
		if candidate == id {
			l.order = append(l.order[:i:i], l.order[i+1:]...)
			break
		}
	}
}

// notify calls every listener registered at the time of the call, in subscription order.
// A listener removed by an earlier listener during the same pass is skipped.
func (l *listenerSet) notify() {
	l.mu.Lock()
	ids := append([]uint64(nil), l.order...)
	l.mu.Unlock()

	for _, id := range ids {
		l.mu.Lock()
		fn, ok := l.entries[id]
		l.mu.Unlock()
		if ok {
			fn()
		}
	}
}

func (l *listenerSet) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
