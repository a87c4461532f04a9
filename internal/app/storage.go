// storage.go выбирает хранилище по STORE_DRIVER.
package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dabs-bot/internal/config"
	"serotonyl.ru/dabs-bot/internal/db/postgres"
	"serotonyl.ru/dabs-bot/internal/db/redisdb"
	"serotonyl.ru/dabs-bot/internal/db/sqlite"
	"serotonyl.ru/dabs-bot/internal/features/dabs"
	"serotonyl.ru/dabs-bot/internal/features/members"
)

// storage: записи экономики, справочник участников и то, что надо закрыть.
type storage struct {
	records dabs.Store
	members members.Repository
	closers []func()
}

// Close закрывает соединения в обратном порядке.
func (s *storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// openStorage подключает выбранный драйвер. Справочник участников живёт
// в PostgreSQL только при STORE_DRIVER=postgres, иначе в памяти.
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	st := &storage{members: members.NewMemoryRepository()}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("STORE_DRIVER=memory: записи пропадут при рестарте")
		st.records = dabs.NewMemoryStore()

	case config.StoreFile:
		store, err := dabs.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("ошибка файлового хранилища: %w", err)
		}
		st.records = store

	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		st.closers = append(st.closers, pool.Close)
		if err := postgres.Migrate(ctx, pool, postgres.Migrations); err != nil {
			st.Close()
			return nil, fmt.Errorf("ошибка миграций: %w", err)
		}
		st.records = dabs.NewPostgresStore(pool)
		st.members = members.NewPostgresRepository(pool)

	case config.StoreRedis:
		client, err := redisdb.NewClient(ctx, redisdb.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
		}
		st.closers = append(st.closers, func() {
			if err := client.Close(); err != nil {
				log.WithError(err).Warn("Ошибка закрытия Redis")
			}
		})
		st.records = dabs.NewRedisStore(client, cfg.RedisKeyPrefix)

	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия SQLite: %w", err)
		}
		st.closers = append(st.closers, func() { sqlite.Close(db) })
		store, err := dabs.NewSQLiteStore(db)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("ошибка схемы SQLite: %w", err)
		}
		st.records = store

	default:
		return nil, fmt.Errorf("неизвестный STORE_DRIVER %q", cfg.StoreDriver)
	}

	log.WithField("driver", cfg.StoreDriver).Info("Хранилище записей готово")
	return st, nil
}
