package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go-remedyflow/pkg/database"

	"go.uber.org/zap"
)

type Config struct {
	Env  string
	Port string
	DB   database.Config

	JWTSecret string
	JWTTTL    time.Duration

	Report Report
	SMTP   SMTP
	Kafka  Kafka
	Redis  Redis

	// Public order placement is limited to one request per window per client IP
	OrderRateLimit time.Duration

	Admin Admin
}

type Report struct {
	LowStockThreshold int
	ExpiryWindowDays  int
}

type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SSL      bool
	TMPLDir  string
}

func (s SMTP) Enabled() bool { return s.Host != "" }

type Kafka struct {
	Brokers     []string
	OrdersTopic string
}

func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 && k.OrdersTopic != "" }

type Redis struct {
	Addr     string
	Password string
	DB       int
}

func (r Redis) Enabled() bool { return r.Addr != "" }

type Admin struct {
	Email    string
	Password string
	FullName string
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

func Load(log *zap.Logger) *Config {
	cfg := &Config{
		Env:  getEnvDefault("ENV", "development"),
		Port: getEnvDefault("APP_PORT", "3000"),
		DB: database.Config{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnvDefault("DB_HOST", "localhost"),
			Port:     getEnvDefault("DB_PORT", "5432"),
			User:     getEnvDefault("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnvDefault("DB_NAME", "remedyflow"),
			SSLMode:  getEnvDefault("DB_SSLMODE", "disable"),
			Verbose:  os.Getenv("DB_DEBUG") == "true",
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    time.Duration(atoiDefault(os.Getenv("JWT_TTL_HOURS"), 24)) * time.Hour,
		Report: Report{
			LowStockThreshold: positiveOr(atoiDefault(os.Getenv("LOW_STOCK_THRESHOLD"), 0), 10),
			ExpiryWindowDays:  positiveOr(atoiDefault(os.Getenv("EXPIRY_WINDOW_DAYS"), 0), 90),
		},
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     atoiDefault(os.Getenv("SMTP_PORT"), 465),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			SSL:      getEnvDefault("SMTP_SSL", "true") == "true",
			TMPLDir:  getEnvDefault("TMPL_DIR", "templates"),
		},
		Kafka: Kafka{
			Brokers:     splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			OrdersTopic: getEnvDefault("KAFKA_TOPIC_ORDERS", "order-status"),
		},
		Redis: Redis{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       atoiDefault(os.Getenv("REDIS_DB"), 0),
		},
		OrderRateLimit: time.Duration(atoiDefault(os.Getenv("ORDER_RATE_LIMIT_SECONDS"), 30)) * time.Second,
		Admin: Admin{
			Email:    getEnvDefault("ADMIN_EMAIL", "admin@example.com"),
			Password: os.Getenv("ADMIN_PASSWORD"),
			FullName: getEnvDefault("ADMIN_NAME", "Administrator"),
		},
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			cfg.JWTSecret = getEnv("JWT_SECRET", log)
		} else {
			log.Warn("JWT_SECRET not set, using development secret")
			cfg.JWTSecret = "dev-secret-change-me"
		}
	}
	if cfg.DB.URL == "" && cfg.DB.Password == "" && !cfg.IsDevelopment() {
		cfg.DB.Password = getEnv("DB_PASSWORD", log)
	}

	return cfg
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("required environment variable is not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return def
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func positiveOr(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
