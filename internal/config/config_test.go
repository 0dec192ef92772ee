package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_URI", "mongodb://localhost:27017")
	t.Setenv("ADMINS", "111")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "MediaSearchBot", cfg.MongoDatabase)
	assert.Equal(t, "telegram_files", cfg.MongoCollection)
	assert.Equal(t, 10, cfg.MaxPageSize)
	assert.Equal(t, 300, cfg.CacheTime)
	assert.Equal(t, 20, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 5*time.Minute, cfg.SaveInterval)
	assert.Equal(t, "bot_state.json", cfg.StateFile)
	assert.True(t, cfg.UseCaptionFilter)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{MaxPageSize: 10, RateLimitMax: 20, RateLimitWindow: time.Minute}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
	assert.Contains(t, err.Error(), "DATABASE_URI")
	assert.Contains(t, err.Error(), "ADMIN")
}

func TestParseIDListNormalizesChannelIDs(t *testing.T) {
	ids := parseIDList("111, -1001234567890, 1234567890123")
	assert.Equal(t, []int64{111, -1001234567890, -1001234567890123}, ids)
}

func TestParseIDListSkipsGarbage(t *testing.T) {
	ids := parseIDList("111,,abc, 222")
	assert.Equal(t, []int64{111, 222}, ids)
}

func TestEnvDurationAcceptsSeconds(t *testing.T) {
	t.Setenv("RATE_LIMIT_WINDOW", "90")
	assert.Equal(t, 90*time.Second, envDuration("RATE_LIMIT_WINDOW", time.Minute))

	t.Setenv("RATE_LIMIT_WINDOW", "2m")
	assert.Equal(t, 2*time.Minute, envDuration("RATE_LIMIT_WINDOW", time.Minute))
}

func TestIsAdminAndSourceChannel(t *testing.T) {
	cfg := &Config{Admins: []int64{1, 2}, Channels: []int64{-100}}
	assert.True(t, cfg.IsAdmin(2))
	assert.False(t, cfg.IsAdmin(3))
	assert.True(t, cfg.IsSourceChannel(-100))
	assert.False(t, cfg.IsSourceChannel(-200))
}
