package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Process()
	require.NoError(t, err)
	assert.Equal(t, StoreFile, cfg.StoreDriver)
	assert.Equal(t, 64, cfg.BotMaxInflight)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.True(t, cfg.FeatureGamblingEnabled)
	assert.Nil(t, cfg.AllowedChatIDs)
	assert.False(t, cfg.AdminEnabled())
}

func TestProcessRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Process()
	assert.Error(t, err)
}

func TestProcessParsesIDLists(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "1, 2,,3")
	t.Setenv("ALLOWED_CHAT_IDS", "-100500")
	t.Setenv("ADMIN_PASSWORD_HASH", "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA")

	cfg, err := Process()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, cfg.AdminIDs)
	assert.Equal(t, []int64{-100500}, cfg.AllowedChatIDs)
	assert.True(t, cfg.AdminEnabled())
	assert.True(t, cfg.IsAdmin(2))
	assert.False(t, cfg.IsAdmin(4))
}

func TestProcessRejectsBadIDs(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "1,two")

	_, err := Process()
	assert.ErrorContains(t, err, "ADMIN_IDS")
}

func TestValidateStoreDriver(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"memory", map[string]string{"STORE_DRIVER": "memory"}, false},
		{"upper case", map[string]string{"STORE_DRIVER": "SQLite"}, false},
		{"redis", map[string]string{"STORE_DRIVER": "redis"}, false},
		{"postgres without password", map[string]string{"STORE_DRIVER": "postgres"}, true},
		{"postgres", map[string]string{"STORE_DRIVER": "postgres", "DB_PASSWORD": "secret"}, false},
		{"postgres bad pool", map[string]string{"STORE_DRIVER": "postgres", "DB_PASSWORD": "secret", "DB_MIN_CONNS": "30"}, true},
		{"unknown", map[string]string{"STORE_DRIVER": "mongo"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Process()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: 5432, DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.DatabaseDSN())
}
