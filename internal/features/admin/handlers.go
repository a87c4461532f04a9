// handlers.go: команды админки в личке.
//
//	/login <пароль>   (или /login, затем пароль отдельным сообщением)
//	/logout
//	/badge <@user> <badge>
//	/unbadge <@user> <badge>
package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dabs-bot/internal/common"
	"serotonyl.ru/dabs-bot/internal/features/members"
)

const maxBadgeLen = 32

// Badges: выдача и снятие значков.
type Badges interface {
	GrantBadge(ctx context.Context, userID, badge string) (bool, error)
	RevokeBadge(ctx context.Context, userID, badge string) (bool, error)
}

// Members: поиск получателя значка.
type Members interface {
	GetByUsername(ctx context.Context, username string) (*members.Member, error)
}

// Handler обрабатывает админ-команды.
type Handler struct {
	service *Service
	badges  Badges
	members Members
	bot     common.Sender
}

// NewHandler создаёт обработчик админ-панели.
func NewHandler(service *Service, badges Badges, members Members, bot common.Sender) *Handler {
	return &Handler{service: service, badges: badges, members: members, bot: bot}
}

// IsCommand: относится ли команда к админке.
func IsCommand(cmd string) bool {
	switch cmd {
	case "login", "logout", "badge", "unbadge":
		return true
	}
	return false
}

// HandlePending принимает пароль, если бот его ждёт. true: сообщение обработано.
func (h *Handler) HandlePending(ctx context.Context, msg *tgbotapi.Message) bool {
	if !msg.Chat.IsPrivate() || h.service.GetState(msg.From.ID) != StateAwaitingPassword {
		return false
	}
	h.service.ClearState(msg.From.ID)
	if strings.HasPrefix(msg.Text, "/") {
		// передумал и ввёл другую команду
		return false
	}
	h.login(ctx, msg, strings.TrimSpace(msg.Text))
	return true
}

// HandleCommand выполняет админ-команду.
func (h *Handler) HandleCommand(ctx context.Context, msg *tgbotapi.Message, cmd string, args []string) {
	chatID, userID := msg.Chat.ID, msg.From.ID

	if !msg.Chat.IsPrivate() {
		if cmd == "login" && len(args) > 0 {
			// пароль засветился в группе
			if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, msg.MessageID)); err != nil {
				log.WithError(err).WithField("chat_id", chatID).Warn("Не удалось удалить сообщение с паролем")
			}
		}
		h.sendMessage(chatID, "🔒 Админ-команды работают только в личке.")
		return
	}

	switch cmd {
	case "login":
		if len(args) == 0 {
			if !h.service.IsAdmin(userID) {
				h.sendMessage(chatID, "❌ "+common.ErrNotAdmin.Error())
				return
			}
			h.service.SetState(userID, StateAwaitingPassword)
			h.sendMessage(chatID, "🔐 Введите пароль для доступа к админ-панели:")
			return
		}
		h.login(ctx, msg, strings.Join(args, " "))

	case "logout":
		if h.service.Logout(ctx, userID) {
			h.sendMessage(chatID, "👋 Сессия закрыта.")
		} else {
			h.sendMessage(chatID, "Сессии и так нет.")
		}

	case "badge", "unbadge":
		if err := h.service.Authorize(ctx, userID); err != nil {
			h.sendMessage(chatID, "❌ "+err.Error())
			return
		}
		h.handleBadge(ctx, chatID, cmd == "badge", args)
	}
}

func (h *Handler) login(ctx context.Context, msg *tgbotapi.Message, password string) {
	chatID := msg.Chat.ID
	if _, err := h.service.Login(ctx, msg.From.ID, password); err != nil {
		h.sendMessage(chatID, "❌ "+err.Error())
		return
	}
	h.sendMessage(chatID, "✅ Аутентификация успешна! Доступно: /badge, /unbadge, /logout")
}

func (h *Handler) handleBadge(ctx context.Context, chatID int64, grant bool, args []string) {
	if len(args) < 2 {
		h.sendMessage(chatID, "Использование: /badge <@user> <badge> или /unbadge <@user> <badge>")
		return
	}
	badge := strings.TrimSpace(strings.Join(args[1:], " "))
	if badge == "" || len([]rune(badge)) > maxBadgeLen {
		h.sendMessage(chatID, fmt.Sprintf("❌ Значок должен быть от 1 до %d символов", maxBadgeLen))
		return
	}

	member, err := h.members.GetByUsername(ctx, args[0])
	if err != nil {
		if common.IsRejection(err) {
			h.sendMessage(chatID, "❌ "+common.RejectionReason(err))
			return
		}
		log.WithError(err).Error("Ошибка поиска участника")
		h.sendMessage(chatID, "⚠️ Ошибка поиска участника")
		return
	}
	target := strconv.FormatInt(member.UserID, 10)

	var changed bool
	if grant {
		changed, err = h.badges.GrantBadge(ctx, target, badge)
	} else {
		changed, err = h.badges.RevokeBadge(ctx, target, badge)
	}
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"target": target,
			"badge":  badge,
		}).Error("Ошибка изменения значка")
		h.sendMessage(chatID, "⚠️ Не удалось сохранить значок")
		return
	}

	name := member.DisplayName()
	switch {
	case grant && changed:
		h.sendMessage(chatID, fmt.Sprintf("🏅 %s получает значок «%s»", name, badge))
	case grant:
		h.sendMessage(chatID, fmt.Sprintf("У %s уже есть «%s»", name, badge))
	case changed:
		h.sendMessage(chatID, fmt.Sprintf("🗑 Значок «%s» снят с %s", badge, name))
	default:
		h.sendMessage(chatID, fmt.Sprintf("У %s нет значка «%s»", name, badge))
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
