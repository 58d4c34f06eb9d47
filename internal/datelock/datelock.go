// Package datelock serializes operations per operational day. A ranking pass
// and a what-if mutation on the same date must not interleave; different
// dates proceed independently.
package datelock

import (
	"sync"

	"github.com/kilianp07/induction/core/model"
)

// Locks hands out one mutex per date.
type Locks struct {
	mu    sync.Mutex
	locks map[model.Date]*sync.Mutex
}

// New creates an empty lock table.
func New() *Locks {
	return &Locks{locks: make(map[model.Date]*sync.Mutex)}
}

// Lock acquires the mutex for date, creating it on first use.
func (l *Locks) Lock(date model.Date) {
	l.mu.Lock()
	m := l.locks[date]
	if m == nil {
		m = &sync.Mutex{}
		l.locks[date] = m
	}
	l.mu.Unlock()
	m.Lock()
}

// Unlock releases the mutex for date.
func (l *Locks) Unlock(date model.Date) {
	l.mu.Lock()
	m := l.locks[date]
	l.mu.Unlock()
	if m != nil {
		m.Unlock()
	}
}
