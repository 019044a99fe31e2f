package funnel

import "sync"

// Latest holds the result of the most recently issued request for one UI
// slot. Each request takes a ticket from Begin; a result is stored only if
// its ticket is still the newest, so a slow stale response cannot
// overwrite a newer one.
type Latest[T any] struct {
	mu     sync.Mutex
	issued uint64
	value  T
}

// Begin issues a ticket for a new request.
func (l *Latest[T]) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issued++
	return l.issued
}

// Apply stores v if ticket is the newest issued ticket. It reports whether v was stored.
func (l *Latest[T]) Apply(ticket uint64, v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ticket != l.issued {
		return false
	}
	l.value = v
	return true
}

// Current reports whether ticket is still the newest issued ticket.
func (l *Latest[T]) Current(ticket uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ticket == l.issued
}

// Value returns the stored result.
func (l *Latest[T]) Value() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value
}

// Reset clears the stored result and invalidates outstanding tickets.
func (l *Latest[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issued++
	var zero T
	l.value = zero
}
