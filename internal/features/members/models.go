// Package members ведёт справочник участников: кто писал боту, как их зовут.
// Нужен, чтобы находить получателя по @username (Telegram не даёт такого поиска).
// models.go описывает запись участника.
package members

import (
	"strconv"
	"time"
)

// Member: участник, которого бот видел.
type Member struct {
	UserID    int64     `db:"user_id"`    // Telegram user ID
	Username  string    `db:"username"`   // @username (может быть пустым)
	FirstName string    `db:"first_name"` // Имя
	LastName  string    `db:"last_name"`  // Фамилия (может быть пустой)
	SeenAt    time.Time `db:"seen_at"`    // Когда последний раз писал
}

// DisplayName возвращает отображаемое имя пользователя.
// Если есть @username: возвращает его, иначе: имя + фамилию.
func (m *Member) DisplayName() string {
	if m.Username != "" {
		return "@" + m.Username
	}
	name := m.FirstName
	if m.LastName != "" {
		name += " " + m.LastName
	}
	if name == "" {
		return "user " + strconv.FormatInt(m.UserID, 10)
	}
	return name
}
