package dabs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore хранит записи в таблице dabs_users (user_id TEXT, data JSONB).
// Схему создаёт миграция db/postgres.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*Record, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT data FROM dabs_users WHERE user_id = $1`, userID).Scan(&raw)
	switch {
	case err == nil:
		if rec := decodeOrNil("postgres", userID, raw); rec != nil {
			return rec, nil
		}
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("ошибка чтения записи (user_id=%s): %w", userID, err)
	}

	rec := NewRecord()
	if err := s.Put(ctx, userID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PostgresStore) Put(ctx context.Context, userID string, rec *Record) error {
	raw, err := rec.Encode()
	if err != nil {
		return fmt.Errorf("ошибка сериализации записи (user_id=%s): %w", userID, err)
	}
	query := `
		INSERT INTO dabs_users (user_id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET data = EXCLUDED.data,
		    updated_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, userID, raw); err != nil {
		return fmt.Errorf("ошибка сохранения записи (user_id=%s): %w", userID, err)
	}
	return nil
}

func (s *PostgresStore) All(ctx context.Context) (map[string]*Record, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id, data FROM dabs_users`)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса записей: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*Record)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		if rec := decodeOrNil("postgres", id, raw); rec != nil {
			out[id] = rec
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}
