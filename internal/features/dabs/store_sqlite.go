package dabs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRow: строка таблицы dabs_users в SQLite.
type userRow struct {
	UserID    string `gorm:"primaryKey;column:user_id"`
	Data      string `gorm:"column:data;type:text;not null"`
	UpdatedAt time.Time
}

func (userRow) TableName() string { return "dabs_users" }

// SQLiteStore хранит записи через gorm. Подходит для одиночного инстанса без Postgres.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore создаёт таблицу, если её нет.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&userRow{}); err != nil {
		return nil, fmt.Errorf("ошибка миграции dabs_users: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, userID string) (*Record, error) {
	var row userRow
	err := s.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	switch {
	case err == nil:
		if rec := decodeOrNil("sqlite", userID, []byte(row.Data)); rec != nil {
			return rec, nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("ошибка чтения записи (user_id=%s): %w", userID, err)
	}

	rec := NewRecord()
	if err := s.Put(ctx, userID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLiteStore) Put(ctx context.Context, userID string, rec *Record) error {
	raw, err := rec.Encode()
	if err != nil {
		return fmt.Errorf("ошибка сериализации записи (user_id=%s): %w", userID, err)
	}
	row := userRow{UserID: userID, Data: string(raw)}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("ошибка сохранения записи (user_id=%s): %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) All(ctx context.Context) (map[string]*Record, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ошибка запроса записей: %w", err)
	}
	out := make(map[string]*Record, len(rows))
	for _, row := range rows {
		if rec := decodeOrNil("sqlite", row.UserID, []byte(row.Data)); rec != nil {
			out[row.UserID] = rec
		}
	}
	return out, nil
}
