// Package admin реализует админ-панель с парольной аутентификацией.
// models.go описывает структуры сессий и попыток входа.
package admin

import "time"

// Session: активная сессия администратора.
type Session struct {
	UserID       int64
	Token        string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	LastActivity time.Time
}

// LoginAttempt: попытка входа (для защиты от brute-force).
type LoginAttempt struct {
	UserID  int64
	At      time.Time
	Success bool
}

// State: состояние диалога с админом.
type State struct {
	Name      string
	ExpiresAt time.Time
}

// Возможные состояния админ-диалога
const (
	StateNone             = ""                  // Нет активного состояния
	StateAwaitingPassword = "awaiting_password" // Ждём пароль после голого /login
)

const (
	sessionTTL      = 24 * time.Hour
	stateTTL        = 5 * time.Minute
	attemptsWindow  = 1 * time.Hour
	maxFailedLogins = 3
)
