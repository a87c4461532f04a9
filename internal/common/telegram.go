// telegram.go: минимальный интерфейс отправки в Telegram.
// *tgbotapi.BotAPI его реализует, в тестах используется telegramtest.Sender.
package common

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Sender отправляет сообщения и служебные запросы в Telegram.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}
