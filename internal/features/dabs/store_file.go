package dabs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore хранит каждую запись в файле <dir>/<userID>.json.
// Запись идёт через временный файл и rename, чтобы не оставлять полузаписанный JSON.
type FileStore struct {
	dir string
	mu  sync.Mutex // сериализует создание шаблонов
}

// NewFileStore создаёт каталог, если его нет.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога данных %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(userID string) (string, error) {
	if userID == "" || strings.ContainsAny(userID, `/\`) || userID == "." || userID == ".." {
		return "", fmt.Errorf("недопустимый userID %q", userID)
	}
	return filepath.Join(s.dir, userID+".json"), nil
}

func (s *FileStore) Get(ctx context.Context, userID string) (*Record, error) {
	p, err := s.path(userID)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(p)
	switch {
	case err == nil:
		if rec := decodeOrNil("file", userID, raw); rec != nil {
			return rec, nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("ошибка чтения записи %s: %w", userID, err)
	}

	rec := NewRecord()
	if err := s.Put(ctx, userID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *FileStore) Put(_ context.Context, userID string, rec *Record) error {
	p, err := s.path(userID)
	if err != nil {
		return err
	}
	raw, err := rec.Encode()
	if err != nil {
		return fmt.Errorf("ошибка сериализации записи %s: %w", userID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, userID+".*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("ошибка записи %s: %w", userID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("ошибка записи %s: %w", userID, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("ошибка сохранения %s: %w", userID, err)
	}
	return nil
}

func (s *FileStore) All(_ context.Context) (map[string]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога данных: %w", err)
	}

	out := make(map[string]*Record, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		raw, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения записи %s: %w", id, err)
		}
		if rec := decodeOrNil("file", id, raw); rec != nil {
			out[id] = rec
		}
	}
	return out, nil
}
