// backend-go/internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Cache        CacheConfig
	Storage      StorageConfig
	Intelligence IntelligenceConfig
	Log          LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type CacheConfig struct {
	Enabled         bool
	RedisURL        string
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	RedisDB         int
	SnapshotTTLSecs int
}

// StorageConfig points at the S3-compatible bucket used for report archives.
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

// IntelligenceConfig holds the tunables of the forecasting, reorder and
// expiry engines.
type IntelligenceConfig struct {
	SafetyFactor          float64
	DefaultLeadTimeDays   int
	DefaultHorizonDays    int
	DefaultModel          string
	TrendAverageAccuracy  float64
	Seed                  int64
	Trees                 int
	RiskHighThreshold     float64
	RiskMediumThreshold   float64
	Workers               int
	MinForecastHistoryLen int
}

type LogConfig struct {
	Level  string
	Format string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads the configuration once per process from the environment
// (and a .env file when present).
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()

		v := viper.New()
		SetDefaults(v)
		v.AutomaticEnv()

		instance = FromViper(v)
	})

	return instance
}

// SetDefaults registers every known key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "pharmastock")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 25)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_SNAPSHOT_TTL_SECONDS", 300)

	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_ENDPOINT", "localhost:9000")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "pharmastock-reports")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", false)
	v.SetDefault("STORAGE_PREFIX", "reorder")

	v.SetDefault("SAFETY_FACTOR", 1.5)
	v.SetDefault("DEFAULT_LEAD_TIME_DAYS", 7)
	v.SetDefault("FORECAST_DEFAULT_HORIZON", 30)
	v.SetDefault("FORECAST_DEFAULT_MODEL", "linear-regression")
	v.SetDefault("FORECAST_TREND_ACCURACY", 0.75)
	v.SetDefault("FORECAST_SEED", 42)
	v.SetDefault("FORECAST_TREES", 50)
	v.SetDefault("FORECAST_MIN_HISTORY", 14)
	v.SetDefault("RISK_HIGH_THRESHOLD", 0.8)
	v.SetDefault("RISK_MEDIUM_THRESHOLD", 0.6)
	v.SetDefault("INTEL_WORKERS", 4)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt("DB_MAX_CONNS"),
		},
		Cache: CacheConfig{
			Enabled:         v.GetBool("CACHE_ENABLED"),
			RedisURL:        v.GetString("REDIS_URL"),
			RedisHost:       v.GetString("REDIS_HOST"),
			RedisPort:       v.GetString("REDIS_PORT"),
			RedisPassword:   v.GetString("REDIS_PASSWORD"),
			RedisDB:         v.GetInt("REDIS_DB"),
			SnapshotTTLSecs: v.GetInt("CACHE_SNAPSHOT_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
			Prefix:    v.GetString("STORAGE_PREFIX"),
		},
		Intelligence: IntelligenceConfig{
			SafetyFactor:          v.GetFloat64("SAFETY_FACTOR"),
			DefaultLeadTimeDays:   v.GetInt("DEFAULT_LEAD_TIME_DAYS"),
			DefaultHorizonDays:    v.GetInt("FORECAST_DEFAULT_HORIZON"),
			DefaultModel:          v.GetString("FORECAST_DEFAULT_MODEL"),
			TrendAverageAccuracy:  v.GetFloat64("FORECAST_TREND_ACCURACY"),
			Seed:                  v.GetInt64("FORECAST_SEED"),
			Trees:                 v.GetInt("FORECAST_TREES"),
			RiskHighThreshold:     v.GetFloat64("RISK_HIGH_THRESHOLD"),
			RiskMediumThreshold:   v.GetFloat64("RISK_MEDIUM_THRESHOLD"),
			Workers:               v.GetInt("INTEL_WORKERS"),
			MinForecastHistoryLen: v.GetInt("FORECAST_MIN_HISTORY"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}
