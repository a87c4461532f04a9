// service.go: вход по паролю, сессии, лимит попыток
// и ожидание пароля после голого /login.
package admin

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dabs-bot/internal/common"
)

// Service управляет админ-панелью.
type Service struct {
	repo         *Repository
	passwordHash string
	admins       map[int64]struct{}
	now          func() time.Time

	states   map[int64]*State
	statesMu sync.Mutex
}

// NewService создаёт сервис. Пустой passwordHash выключает вход.
func NewService(repo *Repository, passwordHash string, adminIDs []int64) *Service {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Service{
		repo:         repo,
		passwordHash: passwordHash,
		admins:       admins,
		now:          time.Now,
		states:       make(map[int64]*State),
	}
}

// IsAdmin: есть ли пользователь в ADMIN_IDS.
func (s *Service) IsAdmin(userID int64) bool {
	_, ok := s.admins[userID]
	return ok
}

// Login проверяет пароль. 3 неудачные попытки за час блокируют вход на час.
func (s *Service) Login(ctx context.Context, userID int64, password string) (*Session, error) {
	if s.passwordHash == "" {
		return nil, common.ErrAdminDisabled
	}
	if !s.IsAdmin(userID) {
		return nil, common.ErrNotAdmin
	}

	now := s.now()
	if s.repo.GetRecentFailures(ctx, userID, attemptsWindow, now) >= maxFailedLogins {
		return nil, common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.passwordHash)
	s.repo.LogAttempt(ctx, LoginAttempt{UserID: userID, At: now, Success: match})
	if !match {
		log.WithField("user_id", userID).Warn("Неверный пароль админки")
		return nil, common.ErrWrongPassword
	}

	session := &Session{
		UserID:       userID,
		Token:        uuid.NewString(),
		CreatedAt:    now,
		ExpiresAt:    now.Add(sessionTTL),
		LastActivity: now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	log.WithField("user_id", userID).Info("Админ вошёл")
	return session, nil
}

// Authorize проверяет, что у админа есть живая сессия, и продлевает активность.
func (s *Service) Authorize(ctx context.Context, userID int64) error {
	if !s.IsAdmin(userID) {
		return common.ErrNotAdmin
	}
	now := s.now()
	if s.repo.GetActiveSession(ctx, userID, now) == nil {
		return common.ErrSessionExpired
	}
	s.repo.UpdateActivity(ctx, userID, now)
	return nil
}

// Logout закрывает сессию. false: сессии не было.
func (s *Service) Logout(ctx context.Context, userID int64) bool {
	return s.repo.DeleteSession(ctx, userID)
}

// GetState возвращает текущее состояние диалога.
func (s *Service) GetState(userID int64) string {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()

	state, ok := s.states[userID]
	if !ok {
		return StateNone
	}
	if s.now().After(state.ExpiresAt) {
		delete(s.states, userID)
		return StateNone
	}
	return state.Name
}

// SetState устанавливает состояние диалога с 5-минутным таймаутом.
func (s *Service) SetState(userID int64, name string) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()
	s.states[userID] = &State{Name: name, ExpiresAt: s.now().Add(stateTTL)}
}

// ClearState сбрасывает состояние диалога.
func (s *Service) ClearState(userID int64) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()
	delete(s.states, userID)
}
