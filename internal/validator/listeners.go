package validator

import "sync"

// listeners is a registry of lookup callbacks. Callbacks run synchronously
// on the goroutine that performed the lookup, outside the registry lock.
type listeners struct {
	mu     sync.Mutex
	nextID uint64
	fns    map[uint64]func()
}

func newListeners() *listeners {
	return &listeners{fns: make(map[uint64]func())}
}

func (l *listeners) add(fn func()) func() {
	if fn == nil {
		return func() {}
	}

	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.fns[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners) notify() {
	l.mu.Lock()
	fns := make([]func(), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (l *listeners) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}
