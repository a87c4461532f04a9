// repository.go: хранение справочника.
// В памяти по умолчанию, в PostgreSQL при STORE_DRIVER=postgres.
package members

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound: участника нет в справочнике.
var ErrNotFound = errors.New("участник не найден")

// Repository: хранилище участников.
type Repository interface {
	Upsert(ctx context.Context, m *Member) error
	GetByUserID(ctx context.Context, userID int64) (*Member, error)
	GetByUsername(ctx context.Context, username string) (*Member, error)
}

// MemoryRepository держит справочник в памяти процесса.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*Member
	byName map[string]int64 // username в нижнем регистре → user_id
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[int64]*Member),
		byName: make(map[string]int64),
	}
}

func (r *MemoryRepository) Upsert(_ context.Context, m *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byID[m.UserID]; ok && old.Username != "" {
		delete(r.byName, strings.ToLower(old.Username))
	}
	cp := *m
	r.byID[m.UserID] = &cp
	if m.Username != "" {
		r.byName[strings.ToLower(m.Username)] = m.UserID
	}
	return nil
}

func (r *MemoryRepository) GetByUserID(_ context.Context, userID int64) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[userID]
	if !ok {
		return nil, fmt.Errorf("user_id=%d: %w", userID, ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*Member, error) {
	r.mu.RLock()
	id, ok := r.byName[strings.ToLower(username)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("username=%s: %w", username, ErrNotFound)
	}
	return r.GetByUserID(ctx, id)
}

// PostgresRepository работает с таблицей members.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert добавляет участника или обновляет имя/username.
func (r *PostgresRepository) Upsert(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO members (user_id, username, first_name, last_name, seen_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    seen_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, m.UserID, m.Username, m.FirstName, m.LastName); err != nil {
		return fmt.Errorf("ошибка создания/обновления участника: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	query := `
		SELECT user_id, username, first_name, last_name, seen_at
		FROM members
		WHERE user_id = $1
	`
	return r.scanOne(ctx, fmt.Sprintf("user_id=%d", userID), query, userID)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*Member, error) {
	query := `
		SELECT user_id, username, first_name, last_name, seen_at
		FROM members
		WHERE LOWER(username) = LOWER($1)
	`
	return r.scanOne(ctx, "username="+username, query, username)
}

func (r *PostgresRepository) scanOne(ctx context.Context, what, query string, arg any) (*Member, error) {
	var m Member
	err := r.db.QueryRow(ctx, query, arg).Scan(&m.UserID, &m.Username, &m.FirstName, &m.LastName, &m.SeenAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения участника (%s): %w", what, err)
	}
	return &m, nil
}
