// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Session
	SessionTTL time.Duration

	// Token Store
	TokenStore string // "memory" または "redis"
	RedisURL   string

	// Password
	BcryptCost int

	// Seeding
	// デモ用アカウント（既知の固定パスワード）を起動時に作成するかどうか。
	// 既知パスワードの格納はセキュリティ上のアンチパターンであるため、
	// デフォルトは無効。ローカルデモ用途でのみ有効化すること。
	SeedDemoUsers bool

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionTTL = time.Duration(getEnvInt("SESSION_MAX_AGE", 86400)) * time.Second
	cfg.TokenStore = getEnvString("TOKEN_STORE", "memory")
	cfg.RedisURL = getEnvString("REDIS_URL", "redis://localhost:6379/0")
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", 0) // 0はbcrypt.DefaultCostを意味する
	cfg.SeedDemoUsers = getEnvBool("SEED_DEMO_USERS", false)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	if cfg.TokenStore != "memory" && cfg.TokenStore != "redis" {
		return nil, fmt.Errorf("invalid TOKEN_STORE value: %q (must be \"memory\" or \"redis\")", cfg.TokenStore)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

// SessionMaxAgeSeconds はCookieのMax-Age属性に使用する秒数を返す。
func (c *Config) SessionMaxAgeSeconds() int {
	return int(c.SessionTTL / time.Second)
}
