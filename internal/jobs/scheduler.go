// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежедневная сводка лидеров,
// ежечасная чистка дампов ошибок и поминутная уборка кнопок словаря.
package jobs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dabs-bot/internal/bot/middleware"
	"serotonyl.ru/dabs-bot/internal/features/dabs"
)

// digestSize: строк в каждой таблице сводки.
const digestSize = 5

// Leaderboards: источник таблиц лидеров.
type Leaderboards interface {
	Leaderboard(ctx context.Context, key dabs.SortKey, board dabs.Board) ([]dabs.Entry, error)
}

// Names: имена участников для сводки.
type Names interface {
	DisplayName(ctx context.Context, userID int64) string
}

// Options: что и куда делать. Нулевые поля выключают соответствующую задачу.
type Options struct {
	Location       *time.Location
	AnnounceChatID int64
	Dumper         *middleware.Dumper
	DumpMaxAge     time.Duration
	// Sweep убирает протухшие кнопки словаря.
	Sweep func() int
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron   *cron.Cron
	opts   Options
	boards Leaderboards
	names  Names
	send   func(chatID int64, text string) error
}

// NewScheduler создаёт планировщик в часовом поясе APP_TIMEZONE.
func NewScheduler(boards Leaderboards, names Names, send func(chatID int64, text string) error, opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(opts.Location)),
		opts:   opts,
		boards: boards,
		names:  names,
		send:   send,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.opts.AnnounceChatID != 0 {
		if _, err := s.cron.AddFunc("0 0 * * *", s.job("daily_digest", func() error {
			return s.DailyDigest(ctx)
		})); err != nil {
			return fmt.Errorf("ошибка регистрации сводки: %w", err)
		}
	}

	if s.opts.Dumper != nil && s.opts.DumpMaxAge > 0 {
		if _, err := s.cron.AddFunc("0 * * * *", s.job("prune_dumps", s.PruneDumps)); err != nil {
			return fmt.Errorf("ошибка регистрации чистки дампов: %w", err)
		}
	}

	if s.opts.Sweep != nil {
		if _, err := s.cron.AddFunc("* * * * *", s.job("sweep_pages", func() error {
			if n := s.opts.Sweep(); n > 0 {
				log.WithField("pages", n).Debug("[CRON] Убраны кнопки словаря")
			}
			return nil
		})); err != nil {
			return fmt.Errorf("ошибка регистрации уборки словаря: %w", err)
		}
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"tz":   s.opts.Location.String(),
		"jobs": len(s.cron.Entries()),
	}).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и ждёт текущие задачи.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

// job оборачивает задачу: паника не роняет cron, ошибка уходит в лог.
func (s *Scheduler) job(name string, fn func() error) func() {
	return func() {
		defer middleware.RecoverFromPanic()
		start := time.Now()
		err := fn()
		entry := log.WithFields(log.Fields{"job": name, "took": time.Since(start)})
		if err != nil {
			entry.WithError(err).Error("[CRON] Ошибка задачи")
			return
		}
		entry.Debug("[CRON] Задача выполнена")
	}
}

// DailyDigest публикует топ хороших и злых в ANNOUNCE_CHAT_ID.
func (s *Scheduler) DailyDigest(ctx context.Context) error {
	names := func(userID string) string {
		id, err := strconv.ParseInt(userID, 10, 64)
		if err != nil {
			return userID
		}
		return s.names.DisplayName(ctx, id)
	}

	text := "📰 Daily digest\n"
	for _, board := range []dabs.Board{dabs.BoardPositive, dabs.BoardNegative} {
		entries, err := s.boards.Leaderboard(ctx, dabs.SortDabs, board)
		if err != nil {
			return fmt.Errorf("ошибка таблицы %s: %w", board, err)
		}
		text += "\n" + dabs.RenderLeaderboard(dabs.SortDabs, board, entries, digestSize, names) + "\n"
	}

	if err := s.send(s.opts.AnnounceChatID, text); err != nil {
		return fmt.Errorf("ошибка отправки сводки: %w", err)
	}
	log.WithField("chat_id", s.opts.AnnounceChatID).Info("[CRON] Сводка отправлена")
	return nil
}

// PruneDumps удаляет дампы старше ERROR_DUMP_MAX_AGE.
func (s *Scheduler) PruneDumps() error {
	removed, err := s.opts.Dumper.Prune(s.opts.DumpMaxAge)
	if removed > 0 {
		log.WithField("removed", removed).Info("[CRON] Старые дампы удалены")
	}
	return err
}
