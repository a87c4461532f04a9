// Package bot содержит главный модуль бота: polling, фильтры и маршрутизацию команд.
// bot.go принимает апдейты, пропускает их через middleware и отдаёт обработчикам фич.
package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dabs-bot/internal/bot/filters"
	"serotonyl.ru/dabs-bot/internal/bot/middleware"
	"serotonyl.ru/dabs-bot/internal/common"
	"serotonyl.ru/dabs-bot/internal/config"
	"serotonyl.ru/dabs-bot/internal/features/admin"
	"serotonyl.ru/dabs-bot/internal/features/dabs"
	"serotonyl.ru/dabs-bot/internal/features/dictionary"
	"serotonyl.ru/dabs-bot/internal/features/members"
	"serotonyl.ru/dabs-bot/internal/metrics"
)

const helpText = `Commands:
/dabs check [detailed] [@user]
/dabs daily-roll
/dabs level <amount|max> [false]
/dabs give <@user> <dabs|all>
/dabs leaderboards [sort-by] [positive|negative]
/dabs switch-mode
/dabs bet-roll <dabs>
/dabs bet-flip <heads|tails> <dabs|all>
/dabs bet-dubs <dabs|all>
/ud <term>

Sort keys: dabs, highestDabs, lowestDabs, level, highestLevel, lowestLevel.`

// API: часть Telegram Bot API, нужная циклу бота.
type API interface {
	common.Sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Deps: сервисы и обработчики фич. Dictionary может быть nil (фича выключена).
type Deps struct {
	Members       *members.Service
	MemberHandler *members.Handler
	Dabs          *dabs.Handler
	Dictionary    *dictionary.Handler
	Admin         *admin.Handler
	ChatFilter    *filters.ChatFilter
	Dumper        *middleware.Dumper
}

// Bot: главная структура бота, объединяющая все компоненты.
type Bot struct {
	api API
	cfg *config.Config
	Deps

	rateLimiter *middleware.RateLimiter
	parser      *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт бота. botName: @username бота без @, для команд вида /dabs@botname.
func New(api API, botName string, cfg *config.Config, deps Deps) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:         api,
		cfg:         cfg,
		Deps:        deps,
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		parser:      NewCommandParser(botName),
		inflight:    make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram и блокируется до отмены ctx.
func (b *Bot) Start(ctx context.Context) {
	defer b.rateLimiter.Close()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": cap(b.inflight),
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.drain()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				b.drain()
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// drain ждёт, пока допишутся апдейты в обработке.
func (b *Bot) drain() {
	for range cap(b.inflight) {
		b.inflight <- struct{}{}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer b.Dumper.Recover(update)
	metrics.UpdateStarted()
	defer metrics.UpdateFinished()

	logger := middleware.UpdateLogger(update)

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update, logger)
		return
	}

	message := update.Message
	if message == nil {
		return
	}

	// Новые участники: запоминаем, чтобы им сразу можно было переводить
	if len(message.NewChatMembers) > 0 {
		if b.ChatFilter.AllowChat(message.Chat) {
			b.MemberHandler.HandleNewChatMembers(ctx, message.NewChatMembers)
		}
		return
	}

	if message.Text == "" || !b.ChatFilter.CheckAccess(message) {
		return
	}

	userID := message.From.ID
	if err := b.Members.EnsureMember(ctx, userID,
		message.From.UserName, message.From.FirstName, message.From.LastName,
	); err != nil {
		logger.WithError(err).Warn("EnsureMember failed")
	}

	// В личке бот может ждать пароль админки
	if b.Admin.HandlePending(ctx, message) {
		return
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		return
	}

	if !b.rateLimiter.Allow(userID) {
		logger.Debug("rate limited")
		return
	}

	logger.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	if err := b.routeCommand(ctx, message, cmd, args); err != nil {
		b.dump(logger, err, update)
	}
}

// routeCommand маршрутизирует команду к нужному обработчику.
// Ошибка: системный сбой, пользователю уже ответили.
func (b *Bot) routeCommand(ctx context.Context, message *tgbotapi.Message, cmd string, args []string) error {
	switch cmd {
	case "start", "help":
		b.sendMessage(message.Chat.ID, helpText)
		return nil

	case "dabs":
		return b.Dabs.HandleCommand(ctx, message, args)

	case "ud", "urban", "dictionary":
		if b.Dictionary == nil {
			b.sendMessage(message.Chat.ID, "📖 Dictionary is disabled.")
			return nil
		}
		return b.Dictionary.HandleCommand(ctx, message, args)
	}

	if admin.IsCommand(cmd) {
		b.Admin.HandleCommand(ctx, message, cmd, args)
	}
	return nil
}

// handleCallback обрабатывает нажатия inline-кнопок.
func (b *Bot) handleCallback(ctx context.Context, update tgbotapi.Update, logger *log.Entry) {
	cq := update.CallbackQuery
	if cq.Message != nil && !b.ChatFilter.AllowChat(cq.Message.Chat) {
		return
	}

	if b.Dictionary != nil && dictionary.IsCallback(cq.Data) {
		if err := b.Dictionary.HandleCallback(ctx, cq); err != nil {
			b.dump(logger, err, update)
		}
		return
	}

	// Неизвестная кнопка: всё равно отвечаем, иначе у клиента крутится часик
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		logger.WithError(err).Debug("Не удалось ответить на callback")
	}
}

func (b *Bot) dump(logger *log.Entry, err error, update tgbotapi.Update) {
	if b.Dumper == nil {
		logger.WithError(err).Error("Ошибка обработки апдейта")
		return
	}
	path, dumpErr := b.Dumper.Dump(middleware.DumpError, err, update)
	if dumpErr != nil {
		logger.WithError(err).WithField("dump_error", dumpErr).Error("Ошибка обработки апдейта, дамп не записан")
		return
	}
	logger.WithError(err).WithField("dump", path).Error("Ошибка обработки апдейта")
}

// sendMessage: утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// SendText отправляет сообщение в чат (для планировщика).
func (b *Bot) SendText(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// CommandParser парсит команды с префиксами !, . и /.
type CommandParser struct {
	validPrefixes []string
	botName       string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser(botName string) *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
		botName:       strings.ToLower(botName),
	}
}

// ParseCommand разбирает текст на команду и аргументы.
// /cmd@otherbot: команда другому боту, не наша.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	if name, target, ok := strings.Cut(command, "@"); ok {
		if p.botName == "" || target != p.botName {
			return "", nil, false
		}
		command = name
	}
	if command == "" {
		return "", nil, false
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
