// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"chat_backend/internal/feature/auth/adapters/imagehost"
	"chat_backend/internal/platform/db"
	"chat_backend/internal/platform/redis"
)

// ストアドライバー
const (
	StoreMongo    = "mongo"
	StoreMySQL    = db.DriverMySQL
	StorePostgres = db.DriverPostgres
	StoreSQLite   = db.DriverSQLite
)

// ErrMissingJWTSecret はJWT_SECRETが未設定の場合に返されます。
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port         string // APIサーバーのポート番号
	GinMode      string // Ginの実行モード (debug, release, test)
	AppEnv       string // production のときCookieにSecure属性を付与
	CookieSecure bool
	LogLevel     string
	LogFormat    string // json または text

	// トークン設定
	JWTSecret     string
	JWTExpiration time.Duration

	// ストア設定
	StoreDriver    string // mongo, mysql, postgres, sqlite
	MongoURI       string
	MongoDatabase  string
	SQL            db.Config
	RunMigrations  bool
	ConnectTimeout time.Duration

	// キャッシュ設定
	Redis        redis.Config
	UserCacheTTL time.Duration

	// 画像ホスト設定
	ImageHost        imagehost.Config
	UploadsPerMinute int

	// CORS許可オリジン（カンマ区切り、空なら無効）
	CORSAllowedOrigins []string
}

// Load は.envファイル（存在する場合）と環境変数から設定を読み込み、検証します。
func Load() (*Config, error) {
	// .env ファイルを読み込む（存在しない場合はスキップ）
	_ = godotenv.Load()

	sql := db.LoadConfigFromEnv()

	cfg := &Config{
		Port:         getEnv("PORT", "5001"),
		GinMode:      getEnv("GIN_MODE", "debug"),
		AppEnv:       getEnv("APP_ENV", "development"),
		CookieSecure: getEnvAsBool("COOKIE_SECURE", false),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiration: getEnvAsDuration("JWT_EXPIRATION", 7*24*time.Hour),

		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "chat"),
		SQL:            sql,
		RunMigrations:  getEnvAsBool("RUN_MIGRATIONS", false),
		ConnectTimeout: getEnvAsDuration("DB_CONNECT_TIMEOUT", 60*time.Second),

		Redis: redis.Config{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     os.Getenv("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		UserCacheTTL: getEnvAsDuration("USER_CACHE_TTL", 5*time.Minute),

		ImageHost: imagehost.Config{
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			Bucket:          os.Getenv("S3_BUCKET"),
			PublicBaseURL:   os.Getenv("S3_PUBLIC_BASE_URL"),
			UsePathStyle:    getEnvAsBool("S3_USE_PATH_STYLE", false),
			KeyPrefix:       getEnv("S3_KEY_PREFIX", "avatars"),
			MaxBytes:        getEnvAsInt64("PROFILE_PIC_MAX_BYTES", imagehost.DefaultMaxBytes),
		},
		UploadsPerMinute: getEnvAsInt("UPLOADS_PER_MINUTE", 60),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
	if cfg.StoreDriver != StoreMongo {
		cfg.SQL.Driver = cfg.StoreDriver
	}

	// 必須設定のバリデーション
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	switch c.StoreDriver {
	case StoreMongo, StoreMySQL, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.ImageHost.Bucket != "" && c.ImageHost.PublicBaseURL == "" {
		return errors.New("S3_PUBLIC_BASE_URL is required when S3_BUCKET is set")
	}
	return nil
}

// SecureCookies はセッションCookieにSecure属性を付与するかを返します。
func (c *Config) SecureCookies() bool {
	return c.AppEnv == "production" || c.CookieSecure
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsInt64 は環境変数を64ビット整数として取得します。
func getEnvAsInt64(key string, defaultValue int64) int64 {
	value, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration は "168h" のような time.ParseDuration 形式を受け付けます。
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
