package core

import (
	"sync/atomic"
)

// Store holds the latest aggregated snapshot in memory and answers queries
// over it. The snapshot is an immutable slice swapped atomically, so a reader
// sees either the previous or the new snapshot in full.
type Store struct {
	snapshot atomic.Pointer[[]User]
}

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{}
	s.snapshot.Store(&[]User{})
	return s
}

func (s *Store) current() []User {
	return *s.snapshot.Load()
}

// Save replaces the snapshot with a copy of users.
func (s *Store) Save(users []User) {
	next := cloneUsers(users)
	s.snapshot.Store(&next)
}

// Clear empties the snapshot.
func (s *Store) Clear() {
	s.snapshot.Store(&[]User{})
}

// Len returns the number of users in the snapshot.
func (s *Store) Len() int {
	return len(s.current())
}

// ListAll returns a copy of every user in stored order.
func (s *Store) ListAll() []User {
	return cloneUsers(s.current())
}

// FindByID returns the user with the given ID. IDs are always positive, so a
// zero or negative ID never matches.
func (s *Store) FindByID(id int64) (User, bool) {
	if id <= 0 {
		return User{}, false
	}
	for _, u := range s.current() {
		if u.ID == id {
			return u.Clone(), true
		}
	}
	return User{}, false
}
