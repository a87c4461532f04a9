package dabs

import (
	"cmp"
	"slices"
	"strings"

	"serotonyl.ru/dabs-bot/internal/common"
)

// SortKey: поле, по которому строится таблица лидеров.
type SortKey string

const (
	SortDabs         SortKey = "dabs"
	SortHighestDabs  SortKey = "highestDabs"
	SortLowestDabs   SortKey = "lowestDabs"
	SortLevel        SortKey = "level"
	SortHighestLevel SortKey = "highestLevel"
	SortLowestLevel  SortKey = "lowestLevel"
)

// SortKeys: все допустимые ключи в порядке вывода в справке.
var SortKeys = []SortKey{SortDabs, SortHighestDabs, SortLowestDabs, SortLevel, SortHighestLevel, SortLowestLevel}

// Board: какую половину участников показывать.
type Board string

const (
	BoardPositive Board = "positive"
	BoardNegative Board = "negative"
)

// ParseSortKey разбирает ключ без учёта регистра; пустая строка: dabs.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortDabs, nil
	}
	for _, k := range SortKeys {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", common.ErrUnknownSortKey
}

// ParseBoard разбирает тип таблицы; пустая строка: positive.
func ParseBoard(s string) (Board, error) {
	switch strings.ToLower(s) {
	case "", "positive", "nice":
		return BoardPositive, nil
	case "negative", "ebil":
		return BoardNegative, nil
	}
	return "", common.ErrUnknownBoard
}

func (k SortKey) value(r *Record) int64 {
	switch k {
	case SortHighestDabs:
		return r.HighestDabs
	case SortLowestDabs:
		return r.LowestDabs
	case SortLevel:
		return r.Level
	case SortHighestLevel:
		return r.HighestLevel
	case SortLowestLevel:
		return r.LowestLevel
	}
	return r.Dabs
}

func (k SortKey) lowest() bool {
	return k == SortLowestDabs || k == SortLowestLevel
}

// Entry: строка таблицы лидеров.
type Entry struct {
	UserID string
	Value  int64
	Record *Record
}

// Leaderboard фильтрует записи по знаку поля key и сортирует.
// current/highest по убыванию, lowest по возрастанию, на обеих досках.
// При равенстве: по UserID.
func Leaderboard(records map[string]*Record, key SortKey, board Board) []Entry {
	out := make([]Entry, 0, len(records))
	for id, rec := range records {
		v := key.value(rec)
		if (board == BoardNegative && v < 0) || (board != BoardNegative && v > 0) {
			out = append(out, Entry{UserID: id, Value: v, Record: rec})
		}
	}

	desc := !key.lowest()

	slices.SortFunc(out, func(a, b Entry) int {
		c := cmp.Compare(a.Value, b.Value)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.UserID, b.UserID)
	})
	return out
}
