// Package dabs реализует экономику «дабов»: баланс, уровни, ежедневный ролл,
// переводы между участниками и три азартные игры.
// models.go описывает запись пользователя и результаты операций.
package dabs

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Record: состояние одного пользователя. Хранится как JSON-объект,
// ключи совпадают с прежним форматом файлов data/users/<id>.json.
type Record struct {
	// Режим. true значит «nice» (баланс растёт вверх), false значит «ebil» (вниз).
	Positive    bool  `json:"positive"`
	Dabs        int64 `json:"dabs"`
	HighestDabs int64 `json:"highestDabs"`
	LowestDabs  int64 `json:"lowestDabs"`

	LastGiveDate int64   `json:"lastGiveDate"` // номер дня последнего перевода
	PercentGiven float64 `json:"percentGiven"` // доля баланса, отданная в LastGiveDate
	GiveBase     int64   `json:"giveBase"`     // |баланс| перед первым переводом в LastGiveDate
	TotalGive    int64   `json:"totalGive"`
	TotalBadGive int64   `json:"totalBadGive"`
	TotalGot     int64   `json:"totalGot"`
	TotalBadGot  int64   `json:"totalBadGot"`

	Level           int64 `json:"level"`
	HighestLevel    int64 `json:"highestLevel"`
	LowestLevel     int64 `json:"lowestLevel"`
	LevelsDestroyed int64 `json:"levelsDestroyed"` // уровни, сгоревшие при смене режима

	LastClaim   int64    `json:"lastClaim"` // номер дня последнего daily-roll
	ClaimStreak int64    `json:"claimStreak"`
	DailyWins   int64    `json:"dailyWins"`
	History     [6]int64 `json:"history"` // singles, dubs, trips, quads, quints, sextuples

	BetTotal  int64 `json:"betTotal"`
	BetWon    int64 `json:"betWon"`
	FlipSteak int64 `json:"flipSteak"`

	Badges []string `json:"badges"`
}

// NewRecord возвращает шаблонную запись нового пользователя.
func NewRecord() *Record {
	return &Record{Positive: true, Badges: []string{}}
}

// DecodeRecord разбирает сохранённый JSON поверх шаблона:
// отсутствующие ключи (старые записи) получают значения по умолчанию.
func DecodeRecord(data []byte) (*Record, error) {
	rec := NewRecord()
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("битая запись: %w", err)
	}
	if rec.Badges == nil {
		rec.Badges = []string{}
	}
	return rec, nil
}

// Encode сериализует запись для хранилища.
func (r *Record) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// Clone возвращает глубокую копию записи.
func (r *Record) Clone() *Record {
	c := *r
	c.Badges = slices.Clone(r.Badges)
	if c.Badges == nil {
		c.Badges = []string{}
	}
	return &c
}

// Mode возвращает название режима для вывода.
func (r *Record) Mode() string {
	if r.Positive {
		return "nice"
	}
	return "ebil"
}

// HasBadge проверяет наличие значка.
func (r *Record) HasBadge(badge string) bool {
	return slices.Contains(r.Badges, badge)
}

// AddBadge добавляет значок, если его ещё нет. Возвращает true, если добавлен.
func (r *Record) AddBadge(badge string) bool {
	if r.HasBadge(badge) {
		return false
	}
	r.Badges = append(r.Badges, badge)
	return true
}

// RemoveBadge убирает значок. Возвращает true, если он был.
func (r *Record) RemoveBadge(badge string) bool {
	i := slices.Index(r.Badges, badge)
	if i < 0 {
		return false
	}
	r.Badges = slices.Delete(r.Badges, i, i+1)
	return true
}

// sign возвращает направление роста для режима, +1 или -1.
func (r *Record) sign() int64 {
	if r.Positive {
		return 1
	}
	return -1
}

func (r *Record) trackDabs() {
	r.HighestDabs = max(r.HighestDabs, r.Dabs)
	r.LowestDabs = min(r.LowestDabs, r.Dabs)
}

func (r *Record) trackLevel() {
	r.HighestLevel = max(r.HighestLevel, r.Level)
	r.LowestLevel = min(r.LowestLevel, r.Level)
}

// RollResult: итог ежедневного ролла.
type RollResult struct {
	Draw   int64 // выпавшее число 0..999999
	Tier   int   // 0: singles ... 5: sextuples
	Payout int64 // изменение баланса со знаком режима
	Streak int64
}

// LevelResult: итог level / dry-run.
type LevelResult struct {
	Levels    int64 // сколько уровней получено (или было бы получено)
	Cost      int64 // сколько дабов списано, по модулю
	FromLevel int64
	ToLevel   int64
	DryRun    bool
	NextCost  int64 // цена следующего уровня после операции
}

// GiveResult: итог перевода.
type GiveResult struct {
	Amount       int64 // переведённая сумма со знаком
	Bad          bool  // перевод против режима получателя
	PercentGiven float64
	Sender       *Record
	Receiver     *Record
}

// Game: название азартной игры.
type Game string

const (
	GameRoll Game = "roll"
	GameFlip Game = "flip"
	GameDubs Game = "dubs"
)

// BetResult: итог ставки.
type BetResult struct {
	Game   Game
	Amount int64 // фактическая ставка со знаком
	Draw   int64
	Tier   int   // только для dubs
	Heads  bool  // только для flip: что выпало
	Won    bool
	Net    int64 // изменение баланса со знаком
	Streak int64 // только для flip
}

// CheckResult: ответ на check.
type CheckResult struct {
	UserID   string
	Record   *Record
	Detailed bool
}
