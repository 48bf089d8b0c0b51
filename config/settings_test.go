package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("PORT", "")

	s, err := LoadSettings(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", s.Server.Port)
	assert.Equal(t, "*/5 * * * *", s.Board.RefreshCron)
	assert.Equal(t, 14, s.Board.HorizonDays)
	assert.Equal(t, 4, s.Engine.Parallelism)
	assert.Equal(t, 5*time.Minute, s.Redis.CacheTTL)
	assert.Equal(t, time.Monday, s.WeekStart())
	assert.Equal(t, "Africa/Casablanca", s.Calendar.Timezone)
	assert.Equal(t, 366, s.Engine.MaxRangeDays)
}

func TestLoadSettings_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("WEEK_START", "Sunday")
	t.Setenv("BOARD_HORIZON_DAYS", "30")
	t.Setenv("ENGINE_PARALLELISM", "8")
	t.Setenv("AVAILABILITY_CACHE_TTL", "90s")

	s, err := LoadSettings(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", s.Server.Port)
	assert.Equal(t, time.UTC, s.Location())
	assert.Equal(t, time.Sunday, s.WeekStart())
	assert.Equal(t, 30, s.Board.HorizonDays)
	assert.Equal(t, 8, s.Engine.Parallelism)
	assert.Equal(t, 90*time.Second, s.Redis.CacheTTL)
}

func TestSettings_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	s := Settings{Calendar: CalendarConfig{Timezone: "Mars/Olympus"}}
	assert.Equal(t, time.UTC, s.Location())
}

func TestConnectRedis(t *testing.T) {
	assert.Nil(t, ConnectRedis("  "))
	assert.Nil(t, ConnectRedis("redis://localhost:6379/notanumber"))

	c := ConnectRedis("redis://localhost:6380/2")
	require.NotNil(t, c)
	assert.Equal(t, "localhost:6380", c.Options().Addr)
	assert.Equal(t, 2, c.Options().DB)
	_ = c.Close()

	plain := ConnectRedis("cache.internal:6379")
	require.NotNil(t, plain)
	assert.Equal(t, "cache.internal:6379", plain.Options().Addr)
	_ = plain.Close()
}
