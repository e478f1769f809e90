// Package config は環境変数からアプリケーション設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"go-task-list/backend/internal/logger"
)

// Config はアプリケーション全体の設定です。
type Config struct {
	AppPort string
	GinMode string

	// DB
	DBDriver    string // "mysql" または "postgres"
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DatabaseURL string // postgres用
	AutoMigrate bool

	// 認証
	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool

	// Redis (空ならSQLのsessionsテーブルを使う)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSAllowOrigins []string

	LogLevel string
	LogJSON  bool
}

// ErrMissingJWTSecret はJWT_SECRETが未設定の場合のエラーです。
var ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")

// Load は.envと環境変数から設定を読み込みます。必須項目が無ければ終了します。
func Load() *Config {
	// .env が無くても環境変数だけで動く
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv は現在の環境変数から設定を組み立てます。
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppPort:       getEnv("APP_PORT", "8080"),
		GinMode:       os.Getenv("GIN_MODE"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBUser:        os.Getenv("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBHost:        getEnv("DB_HOST", "127.0.0.1"),
		DBName:        os.Getenv("DB_NAME"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AutoMigrate:   getBool("AUTO_MIGRATE", true),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionTTL:    time.Duration(getPositiveInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		CookieSecure:  getBool("COOKIE_SECURE", false),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogJSON:       getBool("LOG_JSON", false),
	}

	switch cfg.DBDriver {
	case "mysql":
		cfg.DBPort = getEnv("DB_PORT", "3306")
	case "postgres":
		cfg.DBPort = getEnv("DB_PORT", "5432")
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	origins := getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowOrigins = append(cfg.CORSAllowOrigins, o)
		}
	}

	return cfg, nil
}

// DSN はドライバに応じた接続文字列を返します。
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		if c.DatabaseURL != "" {
			return c.DatabaseURL
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
	}
	// 例: user:pass@tcp(db:3306)/dbname?parseTime=true&clientFoundRows=true
	// clientFoundRows: 値が変わらないUPDATEでも一致行数を返させる
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&clientFoundRows=true", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getPositiveInt は1以上の値だけを受け付け、それ以外はfallbackを返します。
func getPositiveInt(key string, fallback int) int {
	if n := getInt(key, fallback); n > 0 {
		return n
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
