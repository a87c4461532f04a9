// repository.go хранит сессии и попытки входа в памяти процесса.
// После рестарта админам нужно залогиниться заново.
package admin

import (
	"context"
	"sync"
	"time"
)

// Repository: сессии и журнал попыток входа.
type Repository struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	attempts map[int64][]LoginAttempt
}

// NewRepository создаёт репозиторий.
func NewRepository() *Repository {
	return &Repository{
		sessions: make(map[int64]*Session),
		attempts: make(map[int64][]LoginAttempt),
	}
}

// CreateSession заменяет сессию пользователя новой.
func (r *Repository) CreateSession(_ context.Context, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.UserID] = &cp
	return nil
}

// GetActiveSession возвращает непротухшую сессию или nil.
func (r *Repository) GetActiveSession(_ context.Context, userID int64, now time.Time) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		return nil
	}
	if !now.Before(s.ExpiresAt) {
		delete(r.sessions, userID)
		return nil
	}
	cp := *s
	return &cp
}

// UpdateActivity отмечает время последнего действия.
func (r *Repository) UpdateActivity(_ context.Context, userID int64, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		s.LastActivity = now
	}
}

// DeleteSession закрывает сессию. false: её не было.
func (r *Repository) DeleteSession(_ context.Context, userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[userID]
	delete(r.sessions, userID)
	return ok
}

// LogAttempt записывает попытку входа.
func (r *Repository) LogAttempt(_ context.Context, attempt LoginAttempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[attempt.UserID] = append(r.attempts[attempt.UserID], attempt)
}

// GetRecentFailures считает неудачные попытки за окно и забывает старые.
func (r *Repository) GetRecentFailures(_ context.Context, userID int64, window time.Duration, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.Add(-window)
	kept := r.attempts[userID][:0]
	failed := 0
	for _, a := range r.attempts[userID] {
		if a.At.Before(cutoff) {
			continue
		}
		kept = append(kept, a)
		if !a.Success {
			failed++
		}
	}
	if len(kept) == 0 {
		delete(r.attempts, userID)
	} else {
		r.attempts[userID] = kept
	}
	return failed
}
