// Package config загружает настройки из переменных окружения, необязательного файла .env
// и флагов командной строки. Флаги важнее окружения, окружение важнее
// значений по умолчанию ниже.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Драйверы хранилища.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// DefaultJWTSecret допустим только вне production.
const DefaultJWTSecret = "autoassist-dev-secret"

const envProduction = "production"

type Config struct {
	Port     string `env:"PORT" envDefault:"5000"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Storage   StorageConfig
	Auth      AuthConfig
	HTTP      HTTPConfig
	RateLimit RateLimitConfig
	Minio     MinioConfig
}

type StorageConfig struct {
	Driver          string        `env:"STORAGE_DRIVER" envDefault:"postgres"`
	DatabaseDSN     string        `env:"DATABASE_DSN"`
	MongoURI        string        `env:"MONGO_URI"`
	MongoDatabase   string        `env:"MONGO_DATABASE" envDefault:"autoassist"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	QueryTimeout    time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"`
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET" envDefault:"autoassist-dev-secret"`
	JWTExpire  time.Duration `env:"JWT_EXPIRE_TIME" envDefault:"168h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`
}

type HTTPConfig struct {
	FrontendURL  string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	MaxBodyBytes int64         `env:"MAX_BODY_BYTES" envDefault:"10485760"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	// TrustProxy берет адрес клиента из X-Forwarded-For / X-Real-IP.
	// Включать только за обратным прокси, который перезаписывает эти заголовки.
	TrustProxy   bool          `env:"TRUST_PROXY" envDefault:"false"`
}

// RateLimitConfig ограничивает число попыток авторизации с одного IP за Window.
type RateLimitConfig struct {
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	Register int           `env:"RATE_LIMIT_REGISTER" envDefault:"5"`
	Login    int           `env:"RATE_LIMIT_LOGIN" envDefault:"10"`
}

// MinioConfig необязателен. При пустом Endpoint объектное хранилище отключено.
type MinioConfig struct {
	Endpoint string `env:"MINIO_ENDPOINT"`
	User     string `env:"MINIO_USER"`
	Password string `env:"MINIO_PASSWORD"`
	Bucket   string `env:"MINIO_BUCKET" envDefault:"autoassist"`
	UseSSL   bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}

// Load читает .env (если есть) и переменные окружения процесса.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// BindFlags регистрирует общие флаги в fs. Текущие значения полей становятся
// значениями флагов по умолчанию, поэтому вызывать после Load и до разбора fs.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Port, "port", c.Port, "HTTP listen port (env: PORT)")
	fs.StringVar(&c.Env, "env", c.Env, "runtime environment (env: APP_ENV)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error (env: LOG_LEVEL)")
	fs.StringVar(&c.Storage.Driver, "storage", c.Storage.Driver, "storage driver: postgres or mongo (env: STORAGE_DRIVER)")
	fs.StringVar(&c.Storage.DatabaseDSN, "database-dsn", c.Storage.DatabaseDSN, "PostgreSQL DSN (env: DATABASE_DSN)")
	fs.StringVar(&c.Storage.MongoURI, "mongo-uri", c.Storage.MongoURI, "MongoDB URI (env: MONGO_URI)")
	fs.StringVar(&c.Storage.MongoDatabase, "mongo-database", c.Storage.MongoDatabase, "MongoDB database (env: MONGO_DATABASE)")
}

// IsProduction сообщает, равен ли APP_ENV production.
func (c *Config) IsProduction() bool {
	return c.Env == envProduction
}

// Validate проверяет настройки, необходимые для запуска. Все ошибки возвращаются разом.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.DatabaseDSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN is required for the postgres driver"))
		}
	case DriverMongo:
		if c.Storage.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	} else if c.IsProduction() && c.Auth.JWTSecret == DefaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.Auth.JWTExpire <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRE_TIME must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.Storage.QueryTimeout <= 0 {
		errs = append(errs, errors.New("DB_QUERY_TIMEOUT must be positive"))
	}
	if c.RateLimit.Window <= 0 || c.RateLimit.Register < 1 || c.RateLimit.Login < 1 {
		errs = append(errs, errors.New("rate limit window and limits must be positive"))
	}

	return errors.Join(errs...)
}
