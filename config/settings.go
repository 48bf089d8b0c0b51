package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	CorsOrigins string `mapstructure:"corsOrigins"`
}

type CalendarConfig struct {
	Timezone  string `mapstructure:"timezone"`
	WeekStart string `mapstructure:"weekStart"`
}

type BoardConfig struct {
	RefreshCron string `mapstructure:"refreshCron"`
	HorizonDays int    `mapstructure:"horizonDays"`
}

type EngineConfig struct {
	Parallelism  int `mapstructure:"parallelism"`
	MaxRangeDays int `mapstructure:"maxRangeDays"`
}

type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	CacheTTL time.Duration `mapstructure:"cacheTTL"`
}

type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"passwordHash"`
}

// Settings is everything the service reads at startup apart from the
// database DSN, which ConnectDatabase resolves on its own.
type Settings struct {
	Server   ServerConfig   `mapstructure:"server"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Board    BoardConfig    `mapstructure:"board"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

// LoadSettings reads config.yaml from path when present and lets
// environment variables override every key.
func LoadSettings(path string) (settings Settings, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.BindEnv("server.port", "SERVER_PORT", "PORT")
	v.BindEnv("server.corsOrigins", "CORS_ORIGINS")
	v.BindEnv("calendar.timezone", "APP_TIMEZONE")
	v.BindEnv("calendar.weekStart", "WEEK_START")
	v.BindEnv("board.refreshCron", "BOARD_REFRESH_CRON")
	v.BindEnv("board.horizonDays", "BOARD_HORIZON_DAYS")
	v.BindEnv("engine.parallelism", "ENGINE_PARALLELISM")
	v.BindEnv("engine.maxRangeDays", "ENGINE_MAX_RANGE_DAYS")
	v.BindEnv("redis.url", "REDIS_URL")
	v.BindEnv("redis.cacheTTL", "AVAILABILITY_CACHE_TTL")
	v.BindEnv("admin.username", "ADMIN_USERNAME")
	v.BindEnv("admin.passwordHash", "ADMIN_PASSWORD_HASH")

	if err = v.ReadInConfig(); err != nil {
		// config.yaml is optional
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	if err = v.Unmarshal(&settings); err != nil {
		return
	}
	settings.Normalize()
	return
}

// Normalize fills defaults for anything left empty.
func (s *Settings) Normalize() {
	if strings.TrimSpace(s.Server.Port) == "" {
		s.Server.Port = "8080"
	}
	if strings.TrimSpace(s.Calendar.Timezone) == "" {
		s.Calendar.Timezone = "Africa/Casablanca"
	}
	if strings.TrimSpace(s.Board.RefreshCron) == "" {
		s.Board.RefreshCron = "*/5 * * * *"
	}
	if s.Board.HorizonDays <= 0 {
		s.Board.HorizonDays = 14
	}
	if s.Engine.Parallelism <= 0 {
		s.Engine.Parallelism = 4
	}
	if s.Engine.MaxRangeDays <= 0 {
		s.Engine.MaxRangeDays = 366
	}
	if s.Redis.CacheTTL <= 0 {
		s.Redis.CacheTTL = 5 * time.Minute
	}
}

// Location resolves Calendar.Timezone, falling back to UTC with a warning.
func (s Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Calendar.Timezone)
	if err != nil {
		log.Printf("⚠️  unknown APP_TIMEZONE %q, using UTC: %v", s.Calendar.Timezone, err)
		return time.UTC
	}
	return loc
}

// WeekStart returns the first day of a week page. Only sunday and monday
// are accepted; anything else means monday.
func (s Settings) WeekStart() time.Weekday {
	if strings.EqualFold(strings.TrimSpace(s.Calendar.WeekStart), "sunday") {
		return time.Sunday
	}
	return time.Monday
}
