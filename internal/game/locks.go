package game

import "sync"

// KeyedLocks hands out one mutex per key so that read-modify-write
// sequences against the same character or container serialize without
// a single global lock. Entries are reference counted and dropped when
// the last holder unlocks, so the map does not grow with the ID space.
type KeyedLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedLocks() *KeyedLocks {
	return &KeyedLocks{locks: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for key and returns its unlock function.
// Not reentrant: a holder must not re-lock the same key.
func (k *KeyedLocks) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func characterLockKey(id int64) string {
	return "character:" + formatID(id)
}
