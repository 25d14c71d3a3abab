package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting the application reads at startup.
type Config struct {
	AppPort       string
	DBDriver      string
	DatabaseDSN   string
	JWTSecret     string
	TokenTTL      time.Duration
	RabbitMQURL   string
	RedisAddr     string
	TopUsersTTL   time.Duration
	UploadDir     string
	SentryDSN     string
	SigninMax     int
	SigninWindow  time.Duration
	LogLevel      string
	LogSQL        bool
	AdminEmail    string
	AdminPassword string
}

// DefaultJWTSecret is the placeholder secret. It is only accepted with the
// sqlite driver.
const DefaultJWTSecret = "change_me"

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "forum.db")
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("TOP_USERS_TTL", "5m")
	v.SetDefault("UPLOAD_DIR", "upload")
	v.SetDefault("SENTRY_DSN", "")
	v.SetDefault("SIGNIN_MAX", 5)
	v.SetDefault("SIGNIN_WINDOW", "1m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_SQL", false)
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
}

// Load reads configuration from the environment and, when present, a config.yaml
// in the working directory. Environment variables win over the file.
func Load() (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:       v.GetString("APP_PORT"),
		DBDriver:      v.GetString("DB_DRIVER"),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		TokenTTL:      v.GetDuration("TOKEN_TTL"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		TopUsersTTL:   v.GetDuration("TOP_USERS_TTL"),
		UploadDir:     v.GetString("UPLOAD_DIR"),
		SentryDSN:     v.GetString("SENTRY_DSN"),
		SigninMax:     v.GetInt("SIGNIN_MAX"),
		SigninWindow:  v.GetDuration("SIGNIN_WINDOW"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogSQL:        v.GetBool("LOG_SQL"),
		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET must not be empty")
	}
	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.JWTSecret == DefaultJWTSecret && cfg.DBDriver != "sqlite" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set when DB_DRIVER is %s", cfg.DBDriver)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	return cfg, nil
}
