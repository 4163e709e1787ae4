package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env             string
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string
	OrdersTopic  string

	Postgres       PostgresConfig
	MigrationsPath string

	BackendURL    string
	BackendAPIKey string
	StorageBucket string
	JWTSecret     string

	ChatURL   string
	ChatKey   string
	ChatModel string

	CDNCloudName string

	PaymentDelay time.Duration

	ChatRatePerSecond float64
	ChatBurst         int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// Load reads .env when present and falls back to defaults for everything
// except secrets.
func Load() (*Config, error) {
	_ = godotenv.Load()

	pgPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	paymentDelay, err := time.ParseDuration(getEnv("PAYMENT_DELAY", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_DELAY: %w", err)
	}
	chatRate, err := strconv.ParseFloat(getEnv("CHAT_RATE_PER_SECOND", "0.5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_RATE_PER_SECOND: %w", err)
	}
	chatBurst, err := strconv.Atoi(getEnv("CHAT_BURST", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_BURST: %w", err)
	}

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "gamestore"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		OrdersTopic:  getEnv("ORDERS_TOPIC", "orders"),

		Postgres: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     pgPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "gamestore"),
		},
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/ledger/migrations"),

		BackendURL:    os.Getenv("BACKEND_URL"),
		BackendAPIKey: os.Getenv("BACKEND_API_KEY"),
		StorageBucket: getEnv("STORAGE_BUCKET", "profile-images"),
		JWTSecret:     os.Getenv("JWT_SECRET"),

		ChatURL:   getEnv("CHAT_URL", "https://api.openai.com/v1/chat/completions"),
		ChatKey:   os.Getenv("CHAT_API_KEY"),
		ChatModel: getEnv("CHAT_MODEL", "gpt-4o-mini"),

		CDNCloudName: os.Getenv("CDN_CLOUD_NAME"),

		PaymentDelay: paymentDelay,

		ChatRatePerSecond: chatRate,
		ChatBurst:         chatBurst,
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}
	if cfg.BackendAPIKey == "" {
		return nil, fmt.Errorf("BACKEND_API_KEY is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
