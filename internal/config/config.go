// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры,
// godotenv: чтобы подхватить необязательный .env при локальном запуске.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Поддерживаемые хранилища записей (STORE_DRIVER).
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// Чаты, где бот отвечает. Пусто: любые чаты.
	AllowedChatIDsRaw string  `envconfig:"ALLOWED_CHAT_IDS"`
	AllowedChatIDs    []int64 `envconfig:"-"`
	AdminIDsRaw       string  `envconfig:"ADMIN_IDS"`
	AdminIDs          []int64 `envconfig:"-"`
	// Куда слать ежедневную сводку. 0: не слать.
	AnnounceChatID int64 `envconfig:"ANNOUNCE_CHAT_ID" default:"0"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`
	// Граница суток для daily-roll и лимита give.
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"UTC"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight          int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Admin ---
	// Пустой хеш выключает админку.
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`

	// --- Store ---
	StoreDriver string `envconfig:"STORE_DRIVER" default:"file"`
	DataDir     string `envconfig:"DATA_DIR" default:"data/dabs"`

	// --- Database (STORE_DRIVER=postgres) ---
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"dabs_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Redis (STORE_DRIVER=redis) ---
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"redis:6379"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`
	RedisKeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"dabs:"`

	// --- SQLite (STORE_DRIVER=sqlite) ---
	SQLitePath string `envconfig:"SQLITE_PATH" default:"data/dabs.db"`

	// --- Ops ---
	ErrorDumpDir    string        `envconfig:"ERROR_DUMP_DIR" default:"data/errors"`
	ErrorDumpMaxAge time.Duration `envconfig:"ERROR_DUMP_MAX_AGE" default:"168h"`
	// Пусто: HTTP API не поднимаем.
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// --- Dictionary ---
	DictionaryAPIURL  string        `envconfig:"DICTIONARY_API_URL" default:"https://api.urbandictionary.com/v0/define"`
	DictionaryTimeout time.Duration `envconfig:"DICTIONARY_TIMEOUT" default:"10s"`

	// 0: системный генератор; иначе детерминированный PCG (для отладки).
	RNGSeed uint64 `envconfig:"RNG_SEED" default:"0"`

	// --- Feature Flags ---
	FeatureGamblingEnabled   bool `envconfig:"FEATURE_GAMBLING_ENABLED" default:"true"`
	FeatureDictionaryEnabled bool `envconfig:"FEATURE_DICTIONARY_ENABLED" default:"true"`
	FeatureSyncCommands      bool `envconfig:"FEATURE_SYNC_COMMANDS" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// AdminEnabled: можно ли логиниться в админку.
func (c *Config) AdminEnabled() bool {
	return c.AdminPasswordHash != "" && len(c.AdminIDs) > 0
}

// IsAdmin: есть ли пользователь в ADMIN_IDS.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS и RATE_LIMIT_WINDOW должны быть > 0")
	}
	if c.ErrorDumpMaxAge <= 0 {
		return fmt.Errorf("ERROR_DUMP_MAX_AGE должен быть > 0")
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StoreFile:
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR обязателен для STORE_DRIVER=file")
		}
	case StorePostgres:
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD обязателен для STORE_DRIVER=postgres")
		}
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR обязателен для STORE_DRIVER=redis")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH обязателен для STORE_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("неизвестный STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// Load читает .env (если есть) и переменные окружения и заполняет структуру Config.
// Переменные окружения главнее .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("не удалось прочитать .env: %w", err)
	}
	return Process()
}

// Process заполняет Config только из окружения, без .env.
func Process() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	chats, err := parseInt64CSV(cfg.AllowedChatIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ALLOWED_CHAT_IDS parse: %w", err)
	}
	cfg.AllowedChatIDs = chats

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
