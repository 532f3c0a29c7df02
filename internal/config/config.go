package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret  = "dev-secret-change-me"
	defaultPassSecret = "dev-pass-secret-change-me"
)

// ErrInsecureSecret は本番環境で開発用の秘密鍵が使われていることを表す
var ErrInsecureSecret = errors.New("本番環境では使えない秘密鍵です")

// Config はアプリケーション設定を表す
type Config struct {
	Env       string
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Bus       BusConfig
	Selection SelectionConfig
	Broker    BrokerConfig
	Metrics   MetricsConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

// AuthConfig は認証設定
type AuthConfig struct {
	JWTSecret          string
	BoardingPassSecret string // 搭乗券QRの署名鍵（JWT_SECRET とは別に持つ）
	AccessTokenTTL     time.Duration
	BcryptCost         int
	SignedOutRedirect  string
	SignInRatePerMin   int
}

// BusConfig は座席構成の設定
type BusConfig struct {
	SeatCount int
	SeatPrice int
	SeedSeats bool
}

// SelectionConfig は選択セッションの保持設定
type SelectionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// BrokerConfig はメッセージブローカー設定（URL未設定なら無効）
type BrokerConfig struct {
	URL string
}

// MetricsConfig は /metrics の Basic 認証設定（両方空なら認証なし）
type MetricsConfig struct {
	User     string
	Password string
}

// AuthEnabled は認証が有効かどうかを返す
func (c *MetricsConfig) AuthEnabled() bool {
	return c.User != "" && c.Password != ""
}

// Enabled はブローカーが設定されているかを返す
func (c *BrokerConfig) Enabled() bool {
	return c.URL != ""
}

// Load は環境変数から設定を読み込む
// カレントディレクトリに .env があれば先に読み込む（既存の環境変数は上書きしない）
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "lugarnaviagem"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			PoolSize: getIntEnv("REDIS_POOL_SIZE", 10),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", defaultJWTSecret),
			BoardingPassSecret: getEnv("BOARDING_PASS_SECRET", defaultPassSecret),
			AccessTokenTTL:     getDurationEnv("ACCESS_TOKEN_TTL", 12*time.Hour),
			BcryptCost:         getIntEnv("BCRYPT_COST", 10),
			SignedOutRedirect:  getEnv("AUTH_SIGNED_OUT_REDIRECT", "/login"),
			SignInRatePerMin:   getIntEnv("SIGN_IN_RATE_PER_MIN", 10),
		},
		Bus: BusConfig{
			SeatCount: getIntEnv("BUS_SEAT_COUNT", 50),
			SeatPrice: getIntEnv("BUS_SEAT_PRICE", 0),
			SeedSeats: getBoolEnv("SEED_SEATS", true),
		},
		Selection: SelectionConfig{
			IdleTTL:       getDurationEnv("SELECTION_IDLE_TTL", 30*time.Minute),
			SweepInterval: getDurationEnv("SELECTION_SWEEP_INTERVAL", time.Minute),
		},
		Broker: BrokerConfig{
			URL: getEnv("RABBITMQ_URL", ""),
		},
		Metrics: MetricsConfig{
			User:     getEnv("METRICS_USER", ""),
			Password: getEnv("METRICS_PASSWORD", ""),
		},
	}

	// PaaS 形式の接続URLがあれば個別設定より優先する
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		applyDatabaseURL(&cfg.Database, raw)
	}
	if raw := os.Getenv("REDIS_URL"); raw != "" {
		applyRedisURL(&cfg.Redis, raw)
	}

	return cfg
}

// Validate は起動してよい設定かを確認する
// 本番環境では開発用の既定の秘密鍵と、JWT と搭乗券での鍵の使い回しを拒否する。
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	var errs []error
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == defaultJWTSecret {
		errs = append(errs, fmt.Errorf("JWT_SECRET: %w", ErrInsecureSecret))
	}
	if c.Auth.BoardingPassSecret == "" || c.Auth.BoardingPassSecret == defaultPassSecret {
		errs = append(errs, fmt.Errorf("BOARDING_PASS_SECRET: %w", ErrInsecureSecret))
	}
	if c.Auth.BoardingPassSecret != "" && c.Auth.BoardingPassSecret == c.Auth.JWTSecret {
		errs = append(errs, fmt.Errorf("BOARDING_PASS_SECRET は JWT_SECRET と別の値にしてください: %w", ErrInsecureSecret))
	}
	return errors.Join(errs...)
}

// IsProduction は本番環境かを返す
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func applyDatabaseURL(c *DatabaseConfig, raw string) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return
	}
	c.Host = u.Hostname()
	if p := u.Port(); p != "" {
		c.Port = p
	}
	if u.User != nil {
		c.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			c.Password = pw
		}
	}
	if name := strings.TrimPrefix(u.Path, "/"); name != "" {
		c.DBName = name
	}
	c.SSLMode = "require"
	if mode := u.Query().Get("sslmode"); mode != "" {
		c.SSLMode = mode
	}
}

func applyRedisURL(c *RedisConfig, raw string) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return
	}
	c.Host = u.Hostname()
	if p := u.Port(); p != "" {
		c.Port = p
	}
	if u.User != nil {
		if pw, ok := u.User.Password(); ok {
			c.Password = pw
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
