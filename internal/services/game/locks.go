package game

import (
	"sync"

	"github.com/mcoot/trucogame/internal/model"
)

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// roomLocks hands out one mutex per room code. Entries are dropped once no
// caller holds or waits on them.
type roomLocks struct {
	mu    sync.Mutex
	locks map[model.RoomCode]*roomLock
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[model.RoomCode]*roomLock)}
}

// acquire blocks until the room is held and returns the release function
func (l *roomLocks) acquire(code model.RoomCode) func() {
	l.mu.Lock()
	lock, ok := l.locks[code]
	if !ok {
		lock = &roomLock{}
		l.locks[code] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, code)
		}
		l.mu.Unlock()
	}
}

// size returns the number of live entries
func (l *roomLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
