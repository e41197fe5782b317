package store

import "sync"

// keyLocks hands out one mutex per record key so each upsert's
// read-modify-write cycle is serialized against other writers of the same
// (collection, user, item). Entries are never evicted; the key space is
// bounded by the catalog and the active user set.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for key and returns its release func.
func (k *keyLocks) acquire(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
