package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Editor    EditorConfig
	Scheduler SchedulerConfig
	Sync      SyncConfig
	Exports   ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig carries the shared secret used to validate bearer tokens issued upstream.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EditorConfig seeds new workspaces and controls their cache lifetime.
type EditorConfig struct {
	DefaultColumns int
	SlotDuration   int
	StartTime      string
	WorkspaceTTL   time.Duration
	RosterCacheTTL time.Duration
	MaxWorkspaces  int
	DayLabels      []string
}

// SchedulerConfig toggles and tunes the automatic timetable generator.
type SchedulerConfig struct {
	Enabled                 bool
	Seed                    int64
	DefaultMaxPeriodsPerDay int
	TrialMultiplier         int
}

// SyncConfig configures the background workspace persistence queue.
type SyncConfig struct {
	Enabled    bool
	Workers    int
	Retries    int
	RetryDelay time.Duration
	QueueSize  int
}

// ExportsConfig configures rendered timetable files and their download links.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Editor = EditorConfig{
		DefaultColumns: v.GetInt("EDITOR_DEFAULT_COLUMNS"),
		SlotDuration:   v.GetInt("EDITOR_SLOT_DURATION"),
		StartTime:      v.GetString("EDITOR_START_TIME"),
		WorkspaceTTL:   parseDuration(v.GetString("EDITOR_WORKSPACE_TTL"), 7*24*time.Hour),
		RosterCacheTTL: parseDuration(v.GetString("EDITOR_ROSTER_CACHE_TTL"), time.Minute),
		MaxWorkspaces:  v.GetInt("EDITOR_MAX_WORKSPACES"),
		DayLabels:      splitAndTrim(v.GetString("EDITOR_DAY_LABELS")),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:                 v.GetBool("ENABLE_SCHEDULER"),
		Seed:                    v.GetInt64("SCHEDULER_SEED"),
		DefaultMaxPeriodsPerDay: v.GetInt("SCHEDULER_DEFAULT_MAX_PERIODS_PER_DAY"),
		TrialMultiplier:         v.GetInt("SCHEDULER_TRIAL_MULTIPLIER"),
	}

	cfg.Sync = SyncConfig{
		Enabled:    v.GetBool("ENABLE_SYNC"),
		Workers:    v.GetInt("SYNC_WORKERS"),
		Retries:    v.GetInt("SYNC_RETRIES"),
		RetryDelay: parseDuration(v.GetString("SYNC_RETRY_DELAY"), 2*time.Second),
		QueueSize:  v.GetInt("SYNC_QUEUE_SIZE"),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), time.Hour),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("EDITOR_DEFAULT_COLUMNS", 12)
	v.SetDefault("EDITOR_SLOT_DURATION", 45)
	v.SetDefault("EDITOR_START_TIME", "08:00")
	v.SetDefault("EDITOR_WORKSPACE_TTL", "168h")
	v.SetDefault("EDITOR_ROSTER_CACHE_TTL", "1m")
	v.SetDefault("EDITOR_MAX_WORKSPACES", 256)
	v.SetDefault("EDITOR_DAY_LABELS", "Monday,Tuesday,Wednesday,Thursday,Friday")

	v.SetDefault("ENABLE_SCHEDULER", true)
	v.SetDefault("SCHEDULER_SEED", 0)
	v.SetDefault("SCHEDULER_DEFAULT_MAX_PERIODS_PER_DAY", 3)
	v.SetDefault("SCHEDULER_TRIAL_MULTIPLIER", 10)

	v.SetDefault("ENABLE_SYNC", true)
	v.SetDefault("SYNC_WORKERS", 1)
	v.SetDefault("SYNC_RETRIES", 3)
	v.SetDefault("SYNC_RETRY_DELAY", "2s")
	v.SetDefault("SYNC_QUEUE_SIZE", 64)

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "1h")
}

// StartMinutes converts an "HH:MM" clock into minutes after midnight.
func (c EditorConfig) StartMinutes() int {
	t, err := time.Parse("15:04", strings.TrimSpace(c.StartTime))
	if err != nil {
		return 8 * 60
	}
	return t.Hour()*60 + t.Minute()
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
