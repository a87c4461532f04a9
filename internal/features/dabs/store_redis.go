package dabs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore хранит запись строкой JSON под ключом <prefix>user:<id>.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + "user:" + userID
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*Record, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	switch {
	case err == nil:
		if rec := decodeOrNil("redis", userID, raw); rec != nil {
			return rec, nil
		}
	case !errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("ошибка чтения записи (user_id=%s): %w", userID, err)
	}

	rec := NewRecord()
	if err := s.Put(ctx, userID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RedisStore) Put(ctx context.Context, userID string, rec *Record) error {
	raw, err := rec.Encode()
	if err != nil {
		return fmt.Errorf("ошибка сериализации записи (user_id=%s): %w", userID, err)
	}
	if err := s.client.Set(ctx, s.key(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("ошибка сохранения записи (user_id=%s): %w", userID, err)
	}
	return nil
}

func (s *RedisStore) All(ctx context.Context) (map[string]*Record, error) {
	prefix := s.key("")
	var keys []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("ошибка сканирования ключей: %w", err)
	}

	out := make(map[string]*Record, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения записей: %w", err)
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue // ключ удалили между SCAN и MGET
		}
		id := strings.TrimPrefix(keys[i], prefix)
		if rec := decodeOrNil("redis", id, []byte(str)); rec != nil {
			out[id] = rec
		}
	}
	return out, nil
}
