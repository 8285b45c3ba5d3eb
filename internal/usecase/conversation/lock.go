package conversation

import (
	"sync"

	"github.com/google/uuid"
)

// userLocks serializes conversation steps per user. Two near-simultaneous
// messages from the same number must be processed one after the other, each
// against the state the previous one committed; messages from different
// users proceed in parallel.
type userLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *userLocks) forUser(userID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[userID] = lock
	}
	return lock
}
