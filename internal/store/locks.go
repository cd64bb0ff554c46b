package store

import "sync"

// KeyedLocks provides per-filename advisory mutual exclusion: at most one
// ingestion and at most one extraction may mutate a given filename at a
// time. Acquire returns a release func so locks are released on every exit
// path, including failures.
type KeyedLocks struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedLocks() *KeyedLocks {
	return &KeyedLocks{locks: make(map[string]*entry)}
}

// Acquire blocks until the lock for key is held and returns the release
// func. Entries are reference-counted so the map does not grow without
// bound.
func (k *KeyedLocks) Acquire(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}
