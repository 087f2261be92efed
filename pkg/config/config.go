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
	DataDir   string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Remote   RemoteConfig
	Session  SessionConfig
	Sync     SyncConfig
	History  HistoryConfig
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RemoteConfig tunes calls against the external grading API.
type RemoteConfig struct {
	Timeout             time.Duration
	PerPage             int
	AssignmentsCacheTTL time.Duration
}

// SessionConfig governs the grading session lifecycle.
type SessionConfig struct {
	AutosaveInterval time.Duration
}

// SyncConfig decides which draft bases advance after a successful push.
type SyncConfig struct {
	AdvanceStatusBase bool
	AdvanceRubricBase bool
}

// HistoryConfig toggles persisted grading history and its worker pool.
type HistoryConfig struct {
	Enabled bool
	Workers int
	Retries int
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

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.DataDir = v.GetString("DATA_DIR")

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
		Enabled:  v.GetBool("ENABLE_REDIS_STATE"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	perPage := v.GetInt("REMOTE_PER_PAGE")
	if perPage <= 0 {
		perPage = 100
	}
	cfg.Remote = RemoteConfig{
		Timeout:             parseDuration(v.GetString("REMOTE_TIMEOUT"), 30*time.Second),
		PerPage:             perPage,
		AssignmentsCacheTTL: parseDuration(v.GetString("ASSIGNMENTS_CACHE_TTL"), 2*time.Minute),
	}

	cfg.Session = SessionConfig{
		AutosaveInterval: parseDuration(v.GetString("AUTOSAVE_INTERVAL"), 15*time.Second),
	}

	cfg.Sync = SyncConfig{
		AdvanceStatusBase: v.GetBool("SYNC_ADVANCE_STATUS_BASE"),
		AdvanceRubricBase: v.GetBool("SYNC_ADVANCE_RUBRIC_BASE"),
	}

	cfg.History = HistoryConfig{
		Enabled: v.GetBool("ENABLE_HISTORY"),
		Workers: v.GetInt("HISTORY_WORKERS"),
		Retries: v.GetInt("HISTORY_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3001)
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("DATA_DIR", "./data")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "grading_assistant")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 4)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("ENABLE_REDIS_STATE", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("REMOTE_TIMEOUT", "30s")
	v.SetDefault("REMOTE_PER_PAGE", 100)
	v.SetDefault("ASSIGNMENTS_CACHE_TTL", "2m")

	v.SetDefault("AUTOSAVE_INTERVAL", "15s")

	v.SetDefault("SYNC_ADVANCE_STATUS_BASE", true)
	v.SetDefault("SYNC_ADVANCE_RUBRIC_BASE", true)

	v.SetDefault("ENABLE_HISTORY", false)
	v.SetDefault("HISTORY_WORKERS", 1)
	v.SetDefault("HISTORY_RETRIES", 3)
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
