// Package middleware содержит промежуточные обработчики для логирования,
// восстановления после паники, дампов ошибок и rate-limiting.
package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

const logTextLimit = 50

// UpdateLogger возвращает логгер с полями апдейта: user_id, chat_id, update_id.
// Для сообщений дополнительно пишет начало текста на уровне Debug.
func UpdateLogger(update tgbotapi.Update) *log.Entry {
	fields := log.Fields{"update_id": update.UpdateID}

	switch {
	case update.Message != nil:
		m := update.Message
		if m.From != nil {
			fields["user_id"] = m.From.ID
			fields["username"] = m.From.UserName
		}
		if m.Chat != nil {
			fields["chat_id"] = m.Chat.ID
		}
		entry := log.WithFields(fields)
		if m.Text != "" {
			entry.WithField("text", truncate(m.Text, logTextLimit)).Debug("Входящее сообщение")
		}
		return entry

	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		fields["user_id"] = cq.From.ID
		fields["callback"] = cq.Data
		if cq.Message != nil && cq.Message.Chat != nil {
			fields["chat_id"] = cq.Message.Chat.ID
		}
		entry := log.WithFields(fields)
		entry.Debug("Нажата кнопка")
		return entry
	}
	return log.WithFields(fields)
}

// truncate обрезает строку по рунам, чтобы не резать UTF-8 посередине.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
