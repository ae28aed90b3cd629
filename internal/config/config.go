package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass     string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	AlertCacheTTL time.Duration `env:"ALERT_CACHE_TTL" envDefault:"5m"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// NATS Config, пустой URL отключает ретрансляцию
	NATSURL string `env:"NATS_URL"`

	// Live feed Config
	LiveBufferSize   int           `env:"LIVE_BUFFER_SIZE" envDefault:"64"`
	LiveWriteTimeout time.Duration `env:"LIVE_WRITE_TIMEOUT" envDefault:"10s"`
	LivePingInterval time.Duration `env:"LIVE_PING_INTERVAL" envDefault:"30s"`

	// Rate limit для операций записи в формате ulule/limiter, например "30-M"
	RateLimit string `env:"RATE_LIMIT" envDefault:"30-M"`

	// CORS: список origin через запятую, "*" разрешает любой
	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		AlertCacheTTL:     getEnvAsDuration("ALERT_CACHE_TTL", 5*time.Minute),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:    getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries: getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:  getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		NATSURL:           os.Getenv("NATS_URL"),
		LiveBufferSize:    getEnvAsInt("LIVE_BUFFER_SIZE", 64),
		LiveWriteTimeout:  getEnvAsPositiveDuration("LIVE_WRITE_TIMEOUT", 10*time.Second),
		LivePingInterval:  getEnvAsPositiveDuration("LIVE_PING_INTERVAL", 30*time.Second),
		RateLimit:         getEnv("RATE_LIMIT", "30-M"),
		CORSAllowOrigins:  getEnvAsList("CORS_ALLOW_ORIGINS", []string{"*"}),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsPositiveDuration как getEnvAsDuration, но нулевое или отрицательное значение заменяется значением по умолчанию
func getEnvAsPositiveDuration(key string, defaultValue time.Duration) time.Duration {
	if d := getEnvAsDuration(key, defaultValue); d > 0 {
		return d
	}
	return defaultValue
}

// getEnvAsList разбирает список через запятую. Пустые элементы отбрасываются.
func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
