package race

import (
	"sync"

	"github.com/hamsterrace/raceboard/internal/model"
)

// lockArena hands out one mutex per identity. Entries are reference counted
// and dropped once no request holds or waits on them.
type lockArena struct {
	mu    sync.Mutex
	locks map[model.IdentityID]*identityLock
}

type identityLock struct {
	mu   sync.Mutex
	refs int
}

func newLockArena() *lockArena {
	return &lockArena{locks: make(map[model.IdentityID]*identityLock)}
}

// lock blocks until id is free and returns the matching unlock
func (a *lockArena) lock(id model.IdentityID) func() {
	a.mu.Lock()
	l, ok := a.locks[id]
	if !ok {
		l = &identityLock{}
		a.locks[id] = l
	}
	l.refs++
	a.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		a.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.locks, id)
		}
		a.mu.Unlock()
	}
}

// size returns the number of live entries
func (a *lockArena) size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.locks)
}
