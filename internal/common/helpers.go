// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: часовой пояс, номер дня, форматирование чисел.
package common

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// LoadLocation загружает часовой пояс по имени.
// Если tzdata недоступна, для Europe/Moscow используем UTC+3 вручную, иначе UTC.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc
	}
	log.WithError(err).WithField("tz", name).Warn("Не удалось загрузить часовой пояс")
	if name == "Europe/Moscow" {
		return time.FixedZone("MSK", 3*60*60)
	}
	return time.UTC
}

// DayIndex возвращает номер календарного дня (дней с 1970-01-01) в поясе loc.
// Граница суток: полночь по loc, а не по UTC.
//
// Примеры:
//
//	DayIndex(2024-01-02 00:30 MSK, MSK) → 19724
//	DayIndex(2024-01-01 23:59 MSK, MSK) → 19723
func DayIndex(t time.Time, loc *time.Location) int64 {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// DayStart возвращает момент начала дня с номером day в поясе loc.
func DayStart(day int64, loc *time.Location) time.Time {
	utc := time.Unix(day*86400, 0).UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, loc)
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04".
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02.01.2006 15:04")
}
