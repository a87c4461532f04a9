// Package app инициализирует все компоненты приложения.
// app.go собирает приложение: выбирает хранилище, создаёт сервисы, обработчики,
// фильтры, планировщик и HTTP API и собирает всё в один объект.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dabs-bot/internal/bot"
	"serotonyl.ru/dabs-bot/internal/bot/filters"
	"serotonyl.ru/dabs-bot/internal/bot/middleware"
	"serotonyl.ru/dabs-bot/internal/common"
	"serotonyl.ru/dabs-bot/internal/config"
	"serotonyl.ru/dabs-bot/internal/features/admin"
	"serotonyl.ru/dabs-bot/internal/features/dabs"
	"serotonyl.ru/dabs-bot/internal/features/dictionary"
	"serotonyl.ru/dabs-bot/internal/features/members"
	"serotonyl.ru/dabs-bot/internal/httpapi"
	"serotonyl.ru/dabs-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	// HTTP: nil, если HTTP_ADDR пуст.
	HTTP   *httpapi.Server
	BotAPI *tgbotapi.BotAPI

	storage *storage
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен: компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Хранилище ===
	st, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development" && cfg.AppLogLevel == "trace"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	if cfg.FeatureSyncCommands {
		if _, err := bot.SyncCommands(botAPI, bot.Commands()); err != nil {
			// не критично: команды работают и без меню
			log.WithError(err).Warn("Не удалось синхронизировать меню команд")
		}
	}

	// === 3. Сервисы ===
	loc := common.LoadLocation(cfg.AppTimezone)
	dabsOpts := []dabs.Option{
		dabs.WithLocation(loc),
		dabs.WithGambling(cfg.FeatureGamblingEnabled),
	}
	if cfg.RNGSeed != 0 {
		log.WithField("seed", cfg.RNGSeed).Warn("Детерминированный RNG: только для отладки")
		dabsOpts = append(dabsOpts, dabs.WithRNG(dabs.NewSeededRNG(cfg.RNGSeed)))
	}
	dabsService := dabs.NewService(st.records, dabsOpts...)
	memberService := members.NewService(st.members)
	adminService := admin.NewService(admin.NewRepository(), cfg.AdminPasswordHash, cfg.AdminIDs)
	if !cfg.AdminEnabled() {
		log.Info("Админка отключена (нет ADMIN_PASSWORD_HASH или ADMIN_IDS)")
	}

	// === 4. Обработчики ===
	var dictionaryHandler *dictionary.Handler
	if cfg.FeatureDictionaryEnabled {
		client := dictionary.NewClient(cfg.DictionaryAPIURL, cfg.DictionaryTimeout)
		dictionaryHandler = dictionary.NewHandler(client, botAPI)
	}
	dumper := middleware.NewDumper(cfg.ErrorDumpDir)

	// === 5. Собираем бота ===
	b := bot.New(botAPI, botAPI.Self.UserName, cfg, bot.Deps{
		Members:       memberService,
		MemberHandler: members.NewHandler(memberService),
		Dabs:          dabs.NewHandler(dabsService, memberService, botAPI),
		Dictionary:    dictionaryHandler,
		Admin:         admin.NewHandler(adminService, dabsService, memberService, botAPI),
		ChatFilter:    filters.NewChatFilter(cfg.AllowedChatIDs),
		Dumper:        dumper,
	})

	// === 6. Планировщик задач ===
	jobOpts := jobs.Options{
		Location:       loc,
		AnnounceChatID: cfg.AnnounceChatID,
		Dumper:         dumper,
		DumpMaxAge:     cfg.ErrorDumpMaxAge,
	}
	if dictionaryHandler != nil {
		jobOpts.Sweep = dictionaryHandler.Sweep
	}
	scheduler := jobs.NewScheduler(dabsService, memberService, b.SendText, jobOpts)

	// === 7. HTTP API ===
	var server *httpapi.Server
	if cfg.HTTPAddr != "" {
		server = httpapi.NewServer(cfg.HTTPAddr, dabsService, memberService)
	}

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		HTTP:      server,
		BotAPI:    botAPI,
		storage:   st,
	}, nil
}

// Close закрывает соединения с хранилищем.
func (a *App) Close() {
	a.storage.Close()
}
