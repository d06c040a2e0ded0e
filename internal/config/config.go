package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	SQL      SQLConfig      `mapstructure:"sql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Publish  PublishConfig  `mapstructure:"publish"`
	Live     LiveConfig     `mapstructure:"live"`
	Assets   AssetsConfig   `mapstructure:"assets"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	// Honor X-Forwarded-For and X-Real-IP; enable only behind a proxy that overwrites them
	TrustProxyHeaders bool          `mapstructure:"trust_proxy_headers"`
}

// StorageConfig selects the document store backend
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // postgres, mongo, sqlite, mysql, memory
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// SQLConfig configures the sqlite and mysql document stores
type SQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type PublishConfig struct {
	HistoryDefaultLimit int           `mapstructure:"history_default_limit"`
	HistoryMaxLimit     int           `mapstructure:"history_max_limit"`
	AlertDefaultLimit   int           `mapstructure:"alert_default_limit"`
	AlertMaxLimit       int           `mapstructure:"alert_max_limit"`
	URLCheckTimeout     time.Duration `mapstructure:"url_check_timeout"`
	Optimistic          bool          `mapstructure:"optimistic"`
	UsageScanTimeout    time.Duration `mapstructure:"usage_scan_timeout"`
}

type LiveConfig struct {
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	MaxAge    time.Duration `mapstructure:"max_age"`
	RateLimit LiveRateLimit `mapstructure:"rate_limit"`
}

type LiveRateLimit struct {
	PerSecond float64       `mapstructure:"per_second"`
	Burst     int           `mapstructure:"burst"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type AssetsConfig struct {
	Signer     string        `mapstructure:"signer"` // s3 or token
	Bucket     string        `mapstructure:"bucket"`
	Region     string        `mapstructure:"region"`
	BaseURL    string        `mapstructure:"base_url"`
	PresignTTL time.Duration `mapstructure:"presign_ttl"`
}

type SecurityConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"`
	File   string        `mapstructure:"file"`
	MaxAge time.Duration `mapstructure:"max_age"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.trust_proxy_headers", false)

	// Storage
	v.SetDefault("storage.driver", "postgres")

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "sitepublish")
	v.SetDefault("database.database", "sitepublish")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)

	// Mongo
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "sitepublish")
	v.SetDefault("mongo.connect_timeout", "10s")

	// SQL
	v.SetDefault("sql.dsn", "file:sitepublish.db?_pragma=busy_timeout(5000)")

	// Redis
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Auth
	v.SetDefault("auth.issuer", "")

	// Publish
	v.SetDefault("publish.history_default_limit", 25)
	v.SetDefault("publish.history_max_limit", 200)
	v.SetDefault("publish.alert_default_limit", 50)
	v.SetDefault("publish.alert_max_limit", 200)
	v.SetDefault("publish.url_check_timeout", "5s")
	v.SetDefault("publish.optimistic", false)
	v.SetDefault("publish.usage_scan_timeout", "20s")

	// Live
	v.SetDefault("live.cache_ttl", "60s")
	v.SetDefault("live.max_age", "60s")
	v.SetDefault("live.rate_limit.per_second", 20)
	v.SetDefault("live.rate_limit.burst", 40)
	v.SetDefault("live.rate_limit.ttl", "10m")

	// Assets
	v.SetDefault("assets.signer", "token")
	v.SetDefault("assets.region", "us-east-1")
	v.SetDefault("assets.presign_ttl", "15m")

	// Security
	v.SetDefault("security.rate_limit.requests_per_minute", 120)
	v.SetDefault("security.rate_limit.burst", 20)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_age", "168h") // 7 days

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func bindEnvVars(v *viper.Viper) {
	// Storage
	v.BindEnv("storage.driver", "STORAGE_DRIVER")

	// Database
	v.BindEnv("database.host", "POSTGRES_HOST")
	v.BindEnv("database.password", "POSTGRES_PASSWORD")

	// Mongo
	v.BindEnv("mongo.uri", "MONGO_URI")

	// SQL
	v.BindEnv("sql.dsn", "SQL_DSN")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Auth
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	// Assets
	v.BindEnv("assets.bucket", "ASSETS_BUCKET")
	v.BindEnv("assets.base_url", "ASSETS_BASE_URL")

	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.trust_proxy_headers", "SERVER_TRUST_PROXY_HEADERS")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
}
