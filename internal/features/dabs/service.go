// service.go связывает правила экономики с хранилищем.
// Каждая команда: замок по пользователю → чтение → одна операция движка → запись.
package dabs

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dabs-bot/internal/common"
	"serotonyl.ru/dabs-bot/internal/metrics"
)

// Service: командный интерфейс экономики.
type Service struct {
	store    Store
	rng      RNG
	loc      *time.Location
	now      func() time.Time
	locks    *lockSet
	gambling bool
}

// Option настраивает Service.
type Option func(*Service)

// WithRNG подменяет источник случайности.
func WithRNG(rng RNG) Option { return func(s *Service) { s.rng = rng } }

// WithClock подменяет часы.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithLocation задаёт часовой пояс границы суток.
func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

// WithGambling включает или выключает ставки (FEATURE_GAMBLING_ENABLED).
func WithGambling(enabled bool) Option { return func(s *Service) { s.gambling = enabled } }

// NewService создаёт сервис. По умолчанию: системный RNG, time.Now, UTC, ставки включены.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		rng:      SystemRNG,
		loc:      time.UTC,
		now:      time.Now,
		locks:    newLockSet(),
		gambling: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today: номер текущего дня в настроенном поясе.
func (s *Service) Today() int64 {
	return common.DayIndex(s.now(), s.loc)
}

// Location: часовой пояс сервиса.
func (s *Service) Location() *time.Location { return s.loc }

// update выполняет fn над записью userID под замком и сохраняет результат.
// Если fn вернула ошибку, запись не сохраняется.
func (s *Service) update(ctx context.Context, userID string, fn func(rec *Record) error) (*Record, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("чтение записи %s: %w", userID, err)
	}
	if err := fn(rec); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, userID, rec); err != nil {
		return nil, fmt.Errorf("сохранение записи %s: %w", userID, err)
	}
	return rec, nil
}

// Check возвращает запись targetID (или своей, если targetID пуст).
func (s *Service) Check(ctx context.Context, userID, targetID string, detailed bool) (*CheckResult, error) {
	id := userID
	if targetID != "" {
		id = targetID
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("чтение записи %s: %w", id, err)
	}
	return &CheckResult{UserID: id, Record: rec, Detailed: detailed}, nil
}

// DailyRoll: ежедневный ролл.
func (s *Service) DailyRoll(ctx context.Context, userID string) (RollResult, *Record, error) {
	var res RollResult
	rec, err := s.update(ctx, userID, func(rec *Record) error {
		var err error
		res, err = DailyRoll(rec, s.Today(), s.rng)
		return err
	})
	if err != nil {
		return RollResult{}, nil, err
	}

	metrics.AddDabsMoved("roll", res.Payout)
	log.WithFields(log.Fields{
		"user_id": userID,
		"tier":    res.Tier,
		"payout":  res.Payout,
		"streak":  res.Streak,
	}).Info("Daily roll")
	return res, rec, nil
}

// Level покупает уровни. amount == 0: максимум.
func (s *Service) Level(ctx context.Context, userID string, amount int64, dryRun bool) (LevelResult, *Record, error) {
	var res LevelResult
	rec, err := s.update(ctx, userID, func(rec *Record) error {
		var err error
		res, err = LevelUp(rec, amount, dryRun)
		return err
	})
	if err != nil {
		return LevelResult{}, nil, err
	}
	if !dryRun {
		metrics.AddDabsMoved("level", res.Cost)
	}
	return res, rec, nil
}

// SwitchMode меняет режим nice/ebil.
func (s *Service) SwitchMode(ctx context.Context, userID string) (*Record, error) {
	rec, err := s.update(ctx, userID, func(rec *Record) error {
		SwitchMode(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"mode":    rec.Mode(),
	}).Info("Смена режима")
	return rec, nil
}

// Give переводит дабы. amount == 0: весь дневной остаток.
// Обе записи берутся под замками в фиксированном порядке.
func (s *Service) Give(ctx context.Context, userID, targetID string, amount int64) (GiveResult, error) {
	if userID == targetID {
		return GiveResult{}, common.ErrSelfGive
	}

	unlock := s.locks.Lock(userID, targetID)
	defer unlock()

	sender, err := s.store.Get(ctx, userID)
	if err != nil {
		return GiveResult{}, fmt.Errorf("чтение записи %s: %w", userID, err)
	}
	receiver, err := s.store.Get(ctx, targetID)
	if err != nil {
		return GiveResult{}, fmt.Errorf("чтение записи %s: %w", targetID, err)
	}
	senderBefore := sender.Clone()

	res, err := Give(sender, receiver, amount, s.Today())
	if err != nil {
		return GiveResult{}, err
	}

	if err := s.store.Put(ctx, userID, sender); err != nil {
		return GiveResult{}, fmt.Errorf("сохранение записи %s: %w", userID, err)
	}
	if err := s.store.Put(ctx, targetID, receiver); err != nil {
		// откатываем отправителя, чтобы дабы не исчезли
		if rbErr := s.store.Put(ctx, userID, senderBefore); rbErr != nil {
			log.WithError(rbErr).WithField("user_id", userID).Error("Не удалось откатить отправителя")
		}
		return GiveResult{}, fmt.Errorf("сохранение записи %s: %w", targetID, err)
	}

	metrics.AddDabsMoved("give", res.Amount)
	log.WithFields(log.Fields{
		"from":   userID,
		"to":     targetID,
		"amount": res.Amount,
		"bad":    res.Bad,
	}).Info("Перевод дабов")
	return res, nil
}

// Leaderboard строит таблицу лидеров по всем записям.
func (s *Service) Leaderboard(ctx context.Context, key SortKey, board Board) ([]Entry, error) {
	all, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("чтение всех записей: %w", err)
	}
	return Leaderboard(all, key, board), nil
}

// BetRoll: ставка на кубик.
func (s *Service) BetRoll(ctx context.Context, userID string, amount int64) (BetResult, *Record, error) {
	return s.bet(ctx, userID, func(rec *Record) (BetResult, error) {
		return BetRoll(rec, amount, s.rng)
	})
}

// BetFlip: ставка на монетку.
func (s *Service) BetFlip(ctx context.Context, userID string, amount int64, heads bool) (BetResult, *Record, error) {
	return s.bet(ctx, userID, func(rec *Record) (BetResult, error) {
		return BetFlip(rec, amount, heads, s.rng)
	})
}

// BetDubs: ставка на дубли.
func (s *Service) BetDubs(ctx context.Context, userID string, amount int64) (BetResult, *Record, error) {
	return s.bet(ctx, userID, func(rec *Record) (BetResult, error) {
		return BetDubs(rec, amount, s.rng)
	})
}

func (s *Service) bet(ctx context.Context, userID string, play func(rec *Record) (BetResult, error)) (BetResult, *Record, error) {
	if !s.gambling {
		return BetResult{}, nil, common.ErrGamblingDisabled
	}

	var res BetResult
	rec, err := s.update(ctx, userID, func(rec *Record) error {
		var err error
		res, err = play(rec)
		return err
	})
	if err != nil {
		return BetResult{}, nil, err
	}

	metrics.ObserveBet(string(res.Game), res.Won)
	metrics.AddDabsMoved("bet", res.Net)
	log.WithFields(log.Fields{
		"user_id": userID,
		"game":    res.Game,
		"amount":  res.Amount,
		"net":     res.Net,
	}).Debug("Ставка")
	return res, rec, nil
}

// GrantBadge выдаёт значок вручную (админка). false: значок уже был.
func (s *Service) GrantBadge(ctx context.Context, userID, badge string) (bool, error) {
	var added bool
	_, err := s.update(ctx, userID, func(rec *Record) error {
		added = rec.AddBadge(badge)
		return nil
	})
	return added, err
}

// RevokeBadge снимает значок. false: значка не было.
func (s *Service) RevokeBadge(ctx context.Context, userID, badge string) (bool, error) {
	var removed bool
	_, err := s.update(ctx, userID, func(rec *Record) error {
		removed = rec.RemoveBadge(badge)
		return nil
	})
	return removed, err
}
