// service.go: регистрация участников и поиск по @username.
package members

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dabs-bot/internal/common"
)

// Service управляет справочником участников.
type Service struct {
	repo Repository
}

// NewService создаёт сервис участников.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EnsureMember запоминает пользователя или обновляет его имя.
// Вызывается на каждое сообщение: username в Telegram может меняться.
func (s *Service) EnsureMember(ctx context.Context, userID int64, username, firstName, lastName string) error {
	err := s.repo.Upsert(ctx, &Member{
		UserID:    userID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		return fmt.Errorf("ошибка регистрации участника: %w", err)
	}
	return nil
}

// GetByUserID возвращает участника по Telegram user ID.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// GetByUsername ищет участника по @username (с @ или без).
// Неизвестный пользователь: отказ common.ErrUnknownUser.
func (s *Service) GetByUsername(ctx context.Context, username string) (*Member, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, common.ErrUnknownUser
	}
	m, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, common.ErrUnknownUser
	}
	return m, err
}

// DisplayName: имя для вывода; если участника нет в справочнике, "user <id>".
func (s *Service) DisplayName(ctx context.Context, userID int64) string {
	m, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.WithError(err).WithField("user_id", userID).Warn("Ошибка чтения участника")
		}
		return (&Member{UserID: userID}).DisplayName()
	}
	return m.DisplayName()
}
