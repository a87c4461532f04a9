// Package telegramtest содержит подделку Telegram API для тестов обработчиков.
package telegramtest

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender запоминает всё, что ему отправили.
type Sender struct {
	mu       sync.Mutex
	Sent     []tgbotapi.Chattable
	Requests []tgbotapi.Chattable
	nextID   int

	// Err, если задан, возвращается из Send и Request.
	Err error
}

func (s *Sender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return tgbotapi.Message{}, s.Err
	}
	s.Sent = append(s.Sent, c)
	s.nextID++
	return tgbotapi.Message{MessageID: s.nextID, Chat: &tgbotapi.Chat{ID: chatOf(c)}}, nil
}

func (s *Sender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.Requests = append(s.Requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// Texts возвращает тексты всех отправленных сообщений по порядку.
func (s *Sender) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.Sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

// LastText: текст последнего сообщения или "".
func (s *Sender) LastText() string {
	texts := s.Texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// Reset очищает историю.
func (s *Sender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = nil
	s.Requests = nil
}

func chatOf(c tgbotapi.Chattable) int64 {
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		return m.ChatID
	case tgbotapi.EditMessageTextConfig:
		return m.ChatID
	}
	return 0
}

// Message собирает входящее сообщение для тестов.
func Message(chatID, userID int64, username, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		Text:      text,
		Chat:      &tgbotapi.Chat{ID: chatID, Type: chatType(chatID, userID)},
		From:      &tgbotapi.User{ID: userID, UserName: username, FirstName: username},
	}
}

func chatType(chatID, userID int64) string {
	if chatID == userID {
		return "private"
	}
	return "supergroup"
}
