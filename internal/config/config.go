// Package config は環境変数ベースのアプリケーション設定を提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// デフォルトのプロフィール画像URL。登録時にユーザーへ割り当てる。
const (
	defaultAvatarURL = "https://i.imgur.com/q6bwDGO.png"
	defaultCoverURL  = "https://i.imgur.com/1jDf2Me.png"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Rate Limit
	RateLimitGeneral int
	RateLimitSignUp  int

	// Image host
	ImageHostEndpoint string
	ImageHostClientID string

	// Profile defaults
	DefaultAvatarURL string
	DefaultCoverURL  string

	// Server
	ServerPort string

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

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 30*24*time.Hour)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitSignUp = getEnvInt("RATE_LIMIT_SIGNUP", 10)
	cfg.ImageHostEndpoint = getEnvString("IMAGEHOST_ENDPOINT", "https://api.imgur.com/3/image")
	cfg.ImageHostClientID = getEnvString("IMAGEHOST_CLIENT_ID", "")
	cfg.DefaultAvatarURL = getEnvString("DEFAULT_AVATAR_URL", defaultAvatarURL)
	cfg.DefaultCoverURL = getEnvString("DEFAULT_COVER_URL", defaultCoverURL)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

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

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
