// Package redisdb создаёт клиент Redis и проверяет соединение.
// Используется при STORE_DRIVER=redis.
package redisdb

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Options: параметры подключения (из config).
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient подключается к Redis и делает PING.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis недоступен (%s): %w", opts.Addr, err)
	}

	log.WithField("addr", opts.Addr).Info("Подключение к Redis установлено")
	return client, nil
}
