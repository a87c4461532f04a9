package middleware

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Виды дампов.
const (
	DumpPanic = "panic"
	DumpError = "error"
)

// RecoverFromPanic: для фоновых горутин без апдейта: только лог.
func RecoverFromPanic() {
	if r := recover(); r != nil {
		log.WithFields(log.Fields{
			"component": "panic_recovery",
			"panic":     fmt.Sprintf("%v", r),
			"stack":     string(debug.Stack()),
		}).Error("ПАНИКА в обработчике — восстановлено")
	}
}

// Dumper пишет JSON-дампы ошибок в каталог: <unix-ms>-<uuid>.json.
type Dumper struct {
	dir string
	now func() time.Time
}

// errorDump: содержимое файла дампа.
type errorDump struct {
	Time   time.Time `json:"time"`
	Kind   string    `json:"kind"`
	Error  string    `json:"error"`
	Stack  string    `json:"stack,omitempty"`
	Update any       `json:"update"`
}

func NewDumper(dir string) *Dumper {
	return &Dumper{dir: dir, now: time.Now}
}

// Dump сохраняет ошибку вместе с апдейтом, который её вызвал. Возвращает путь к файлу.
func (d *Dumper) Dump(kind string, err error, update any) (string, error) {
	return d.write(errorDump{Kind: kind, Error: err.Error(), Update: update})
}

// Recover вызывается через defer в обработчике апдейта:
//
//	defer dumper.Recover(update)
//
// Ловит панику, пишет дамп со стеком и лог. nil-Dumper только логирует.
func (d *Dumper) Recover(update any) {
	r := recover()
	if r == nil {
		return
	}
	stack := string(debug.Stack())
	logger := log.WithFields(log.Fields{
		"component": "panic_recovery",
		"panic":     fmt.Sprintf("%v", r),
	})
	if d == nil {
		logger.WithField("stack", stack).Error("ПАНИКА в обработчике — восстановлено")
		return
	}

	path, err := d.write(errorDump{Kind: DumpPanic, Error: fmt.Sprintf("%v", r), Stack: stack, Update: update})
	if err != nil {
		logger.WithError(err).WithField("stack", stack).Error("ПАНИКА в обработчике, дамп не записан")
		return
	}
	logger.WithField("dump", path).Error("ПАНИКА в обработчике — восстановлено")
}

func (d *Dumper) write(dump errorDump) (string, error) {
	now := d.now()
	dump.Time = now

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("ошибка создания каталога дампов: %w", err)
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации дампа: %w", err)
	}

	name := fmt.Sprintf("%d-%s.json", now.UnixMilli(), uuid.NewString())
	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("ошибка записи дампа: %w", err)
	}
	return path, nil
}

// Prune удаляет дампы старше maxAge. Возраст берётся из имени файла.
func (d *Dumper) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(d.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения каталога дампов: %w", err)
	}

	cutoff := d.now().Add(-maxAge).UnixMilli()
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ms, ok := dumpTime(e.Name())
		if !ok || ms >= cutoff {
			continue
		}
		if err := os.Remove(filepath.Join(d.dir, e.Name())); err != nil {
			return removed, fmt.Errorf("ошибка удаления дампа %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func dumpTime(name string) (int64, bool) {
	prefix, _, ok := strings.Cut(name, "-")
	if !ok {
		return 0, false
	}
	ms, err := strconv.ParseInt(prefix, 10, 64)
	return ms, err == nil
}
