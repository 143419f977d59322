// backend-go/internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	App       AppConfig
	Cache     CacheConfig
	Dashboard DashboardConfig
	Insight   InsightConfig
	Storage   StorageConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
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
}

// AppConfig selects where orders and stock come from.
type AppConfig struct {
	DataSource     string
	MockOrderCount int
	MockSeed       int64
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
}

type DashboardConfig struct {
	TopN             int
	DefaultStartDate string
}

type InsightConfig struct {
	Enabled       bool
	APIKey        string
	Model         string
	FallbackText  string
	RatePerMinute int
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

const (
	DataSourceMock     = "mock"
	DataSourcePostgres = "postgres"
)

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()

		// Read from environment variables
		viper.AutomaticEnv()

		instance = build()
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SERVER_READ_TIMEOUT", 15)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "logistics")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DATA_SOURCE", DataSourceMock)
	viper.SetDefault("MOCK_ORDER_COUNT", 350)
	viper.SetDefault("MOCK_SEED", 0)
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)
	viper.SetDefault("DASHBOARD_TOP_N", 10)
	viper.SetDefault("DASHBOARD_DEFAULT_START_DATE", "2024-01-01")
	viper.SetDefault("INSIGHT_ENABLED", true)
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("INSIGHT_MODEL", "gemini-3-flash-preview")
	viper.SetDefault("INSIGHT_FALLBACK_TEXT", "AI Insights currently unavailable. Please check critical alerts manually.")
	viper.SetDefault("INSIGHT_RATE_PER_MINUTE", 30)
	viper.SetDefault("STORAGE_ENDPOINT", "")
	viper.SetDefault("STORAGE_ACCESS_KEY", "")
	viper.SetDefault("STORAGE_SECRET_KEY", "")
	viper.SetDefault("STORAGE_BUCKET", "logistics-dash")
	viper.SetDefault("STORAGE_REGION", "us-east-1")
	viper.SetDefault("STORAGE_USE_SSL", true)
}

func build() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		App: AppConfig{
			DataSource:     viper.GetString("DATA_SOURCE"),
			MockOrderCount: viper.GetInt("MOCK_ORDER_COUNT"),
			MockSeed:       viper.GetInt64("MOCK_SEED"),
		},
		Cache: CacheConfig{
			Enabled:             viper.GetBool("CACHE_ENABLED"),
			RedisURL:            viper.GetString("REDIS_URL"),
			RedisHost:           viper.GetString("REDIS_HOST"),
			RedisPort:           viper.GetString("REDIS_PORT"),
			RedisPassword:       viper.GetString("REDIS_PASSWORD"),
			RedisDB:             viper.GetInt("REDIS_DB"),
			DashboardTTLSeconds: viper.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
		},
		Dashboard: DashboardConfig{
			TopN:             viper.GetInt("DASHBOARD_TOP_N"),
			DefaultStartDate: viper.GetString("DASHBOARD_DEFAULT_START_DATE"),
		},
		Insight: InsightConfig{
			Enabled:       viper.GetBool("INSIGHT_ENABLED"),
			APIKey:        viper.GetString("GEMINI_API_KEY"),
			Model:         viper.GetString("INSIGHT_MODEL"),
			FallbackText:  viper.GetString("INSIGHT_FALLBACK_TEXT"),
			RatePerMinute: viper.GetInt("INSIGHT_RATE_PER_MINUTE"),
		},
		Storage: StorageConfig{
			Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
			AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
			Bucket:    viper.GetString("STORAGE_BUCKET"),
			Region:    viper.GetString("STORAGE_REGION"),
			UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
		},
	}
}
