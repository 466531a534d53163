package services

import "sync"

// UserLocks serializes work per user id inside one process.
// Entries are reference counted and dropped when no goroutine holds or waits on them.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[string]*userLock)}
}

// Lock blocks until userID is free and returns the matching unlock function.
func (u *UserLocks) Lock(userID string) (unlock func()) {
	u.mu.Lock()
	l, ok := u.locks[userID]
	if !ok {
		l = &userLock{}
		u.locks[userID] = l
	}
	l.refs++
	u.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		u.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(u.locks, userID)
		}
		u.mu.Unlock()
	}
}

// Len returns the number of users currently held or awaited.
func (u *UserLocks) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.locks)
}
