// Package filters решает, в каких чатах бот вообще отвечает.
package filters

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// ChatFilter пропускает личку и чаты из ALLOWED_CHAT_IDS.
// Пустой список: разрешены все чаты.
type ChatFilter struct {
	allowed map[int64]struct{}
}

func NewChatFilter(allowedChatIDs []int64) *ChatFilter {
	allowed := make(map[int64]struct{}, len(allowedChatIDs))
	for _, id := range allowedChatIDs {
		allowed[id] = struct{}{}
	}
	return &ChatFilter{allowed: allowed}
}

// CheckAccess проверяет входящее сообщение.
func (f *ChatFilter) CheckAccess(message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil {
		log.WithField("component", "ChatFilter").Warn("nil message/chat")
		return false
	}
	if message.From == nil {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Debug("nil message.From (service/channel message?)")
		return false
	}
	return f.AllowChat(message.Chat)
}

// AllowChat: то же для чата, например из callback-запроса.
func (f *ChatFilter) AllowChat(chat *tgbotapi.Chat) bool {
	if chat == nil {
		return false
	}
	if chat.IsPrivate() || len(f.allowed) == 0 {
		return true
	}
	if _, ok := f.allowed[chat.ID]; ok {
		return true
	}
	log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   chat.ID,
		"chat_type": chat.Type,
	}).Debug("deny: chat not allowed")
	return false
}
