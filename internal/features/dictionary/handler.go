package dictionary

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dabs-bot/internal/common"
	"serotonyl.ru/dabs-bot/internal/metrics"
)

// Данные inline-кнопок.
const (
	callbackPrefix = "ud:"
	callbackPrev   = callbackPrefix + "prev"
	callbackNext   = callbackPrefix + "next"
	callbackRandom = callbackPrefix + "rand"
)

// IsCallback: относится ли нажатие кнопки к словарю.
func IsCallback(data string) bool {
	return strings.HasPrefix(data, callbackPrefix)
}

// Handler обрабатывает /ud и кнопки листания.
type Handler struct {
	client Lookuper
	bot    common.Sender
	pages  *pageCache
	now    func() time.Time
	random func(n int) int
}

func NewHandler(client Lookuper, bot common.Sender) *Handler {
	return &Handler{
		client: client,
		bot:    bot,
		pages:  newPageCache(),
		now:    time.Now,
		random: rand.IntN,
	}
}

func keyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀", callbackPrev),
		tgbotapi.NewInlineKeyboardButtonData("▶", callbackNext),
		tgbotapi.NewInlineKeyboardButtonData("🔀", callbackRandom),
	))
}

// HandleCommand ищет термин и отвечает первой страницей.
// Ошибка возвращается только при сбое словаря.
func (h *Handler) HandleCommand(ctx context.Context, msg *tgbotapi.Message, args []string) error {
	term := strings.TrimSpace(strings.Join(args, " "))

	defs, err := h.client.Lookup(ctx, term)
	switch {
	case err == nil:
		metrics.ObserveLookup(metrics.OutcomeOK)

	case common.IsRejection(err):
		metrics.ObserveLookup(metrics.OutcomeRejected)
		h.reply(msg, common.RejectionReason(err))
		return nil

	case errors.Is(err, common.ErrNoResults):
		metrics.ObserveLookup(metrics.OutcomeRejected)
		h.reply(msg, fmt.Sprintf("No results for %s.", term))
		return nil

	default:
		metrics.ObserveLookup(metrics.OutcomeError)
		log.WithError(err).WithField("term", term).Error("Ошибка запроса к словарю")
		h.reply(msg, "⚠️ Dictionary is unavailable right now.")
		return fmt.Errorf("ud %q: %w", term, err)
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, Render(defs[0], 0, len(defs)))
	out.ParseMode = tgbotapi.ModeHTML
	out.DisableWebPagePreview = true
	out.ReplyToMessageID = msg.MessageID
	if len(defs) > 1 {
		out.ReplyMarkup = keyboard()
	}

	sent, err := h.bot.Send(out)
	if err != nil {
		return fmt.Errorf("ошибка отправки определения: %w", err)
	}
	if len(defs) > 1 {
		h.pages.put(&page{
			chatID:    msg.Chat.ID,
			messageID: sent.MessageID,
			userID:    msg.From.ID,
			defs:      defs,
			touched:   h.now(),
		})
	}
	return nil
}

// HandleCallback листает выдачу. Чужие нажатия и протухшие выдачи только получают ответ.
func (h *Handler) HandleCallback(_ context.Context, cq *tgbotapi.CallbackQuery) error {
	if cq.Message == nil || cq.Message.Chat == nil {
		return h.answer(cq, "")
	}
	chatID, messageID := cq.Message.Chat.ID, cq.Message.MessageID

	var (
		text    string
		foreign bool
	)
	ok := h.pages.with(chatID, messageID, h.now(), func(p *page) {
		if p.userID != cq.From.ID {
			foreign = true
			return
		}
		switch cq.Data {
		case callbackPrev:
			p.move(-1)
		case callbackNext:
			p.move(1)
		case callbackRandom:
			p.index = h.random(len(p.defs))
		}
		p.touched = h.now()
		text = Render(p.defs[p.index], p.index, len(p.defs))
	})

	switch {
	case !ok:
		h.clearKeyboard(chatID, messageID)
		return h.answer(cq, "This search has expired.")
	case foreign:
		return h.answer(cq, "Only the person who searched can flip pages.")
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard())
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	if _, err := h.bot.Send(edit); err != nil {
		return fmt.Errorf("ошибка редактирования определения: %w", err)
	}
	return h.answer(cq, "")
}

// Sweep убирает кнопки у протухших выдач. Возвращает, сколько убрано.
func (h *Handler) Sweep() int {
	expired := h.pages.expire(h.now())
	for _, p := range expired {
		h.clearKeyboard(p.chatID, p.messageID)
	}
	return len(expired)
}

func (h *Handler) clearKeyboard(chatID int64, messageID int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := h.bot.Request(edit); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"chat_id":    chatID,
			"message_id": messageID,
		}).Debug("Не удалось убрать кнопки словаря")
	}
}

func (h *Handler) answer(cq *tgbotapi.CallbackQuery, text string) error {
	if _, err := h.bot.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
		return fmt.Errorf("ошибка ответа на callback: %w", err)
	}
	return nil
}

func (h *Handler) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := h.bot.Send(out); err != nil {
		log.WithError(err).WithField("chat_id", msg.Chat.ID).Error("Ошибка отправки сообщения")
	}
}
