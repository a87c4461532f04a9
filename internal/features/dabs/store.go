// store.go описывает хранилище записей пользователей.
// Каждая запись хранится как JSON-объект под ключом userID. Реализации: память, файлы,
// PostgreSQL, Redis, SQLite. Драйвер выбирается через STORE_DRIVER.
package dabs

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Store хранит по одной записи на пользователя.
//
// Get никогда не возвращает «не найдено»: для неизвестного пользователя
// создаёт и сохраняет шаблон. Битая запись считается отсутствующей.
// Ошибки всех методов: системные сбои.
type Store interface {
	Get(ctx context.Context, userID string) (*Record, error)
	Put(ctx context.Context, userID string, rec *Record) error
	All(ctx context.Context) (map[string]*Record, error)
}

// decodeOrNil разбирает сохранённую запись. Битую запись логирует и возвращает nil:
// вызывающий код заменит её шаблоном.
func decodeOrNil(driver, userID string, data []byte) *Record {
	rec, err := DecodeRecord(data)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"driver":  driver,
			"user_id": userID,
		}).Warn("Битая запись пользователя, заменяем шаблоном")
		return nil
	}
	return rec
}
