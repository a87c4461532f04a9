package dabs

import (
	"slices"
	"sync"
)

// lockSet хранит мьютексы по userID со счётчиком ссылок; неиспользуемые удаляются.
type lockSet struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func newLockSet() *lockSet {
	return &lockSet{locks: make(map[string]*refLock)}
}

// Lock захватывает замки всех ids в лексикографическом порядке (дубликаты убираются),
// поэтому встречные переводы A→B и B→A не блокируют друг друга.
func (s *lockSet) Lock(ids ...string) (unlock func()) {
	keys := slices.Clone(ids)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	held := make([]*refLock, 0, len(keys))
	for _, k := range keys {
		l := s.acquire(k)
		l.mu.Lock()
		held = append(held, l)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			s.release(keys[i])
		}
	}
}

func (s *lockSet) acquire(key string) *refLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &refLock{}
		s.locks[key] = l
	}
	l.refs++
	return l
}

func (s *lockSet) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.locks[key]
	l.refs--
	if l.refs == 0 {
		delete(s.locks, key)
	}
}

// size: число живых замков (для тестов).
func (s *lockSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
