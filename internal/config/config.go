package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv  string `mapstructure:"APP_ENV"`
	AppPort string `mapstructure:"APP_PORT"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBScheme   string `mapstructure:"DB_SCHEME"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// --- Auth ---
	AuthJWTSecret      string `mapstructure:"AUTH_JWT_SECRET"` // base64
	AuthIssuer         string `mapstructure:"AUTH_ISSUER"`
	AuthAccessTTLMin   int    `mapstructure:"AUTH_ACCESS_TTL_MIN"`
	AuthRefreshTTLDays int    `mapstructure:"AUTH_REFRESH_TTL_DAYS"`
	AuthResetTTLMin    int    `mapstructure:"AUTH_RESET_TTL_MIN"`
	AuthStoreTimeoutMS int    `mapstructure:"AUTH_STORE_TIMEOUT_MS"`
	// Allow-list путей без аутентификации (точное совпадение или префикс)
	AuthPublicPaths string `mapstructure:"AUTH_PUBLIC_PATHS"`

	// Ссылка фронтенда для письма сброса пароля
	FrontendResetURL string `mapstructure:"FRONTEND_RESET_URL"`
}

// String реализует интерфейс Stringer
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  AppEnv: %s\n", c.AppEnv))
	sb.WriteString(fmt.Sprintf("  AppPort: %s\n", c.AppPort))
	sb.WriteString(fmt.Sprintf("  DBHost: %s\n", c.DBHost))
	sb.WriteString(fmt.Sprintf("  DBPort: %d\n", c.DBPort))
	sb.WriteString(fmt.Sprintf("  DBUser: %s\n", c.DBUser))
	sb.WriteString(fmt.Sprintf("  DBName: %s\n", c.DBName))
	sb.WriteString(fmt.Sprintf("  DBScheme: %s\n", c.DBScheme))

	// пароли и секреты маскируем
	if c.DBPassword != "" {
		sb.WriteString("  DBPassword: ********\n")
	} else {
		sb.WriteString("  DBPassword: (empty)\n")
	}

	sb.WriteString(fmt.Sprintf("  RedisAddr: %s\n", c.RedisAddr))
	sb.WriteString(fmt.Sprintf("  RedisDB: %d\n", c.RedisDB))
	if c.RedisPassword != "" {
		sb.WriteString("  RedisPassword: ********\n")
	} else {
		sb.WriteString("  RedisPassword: (empty)\n")
	}

	if c.AuthJWTSecret != "" {
		sb.WriteString("  AuthJWTSecret: ********\n")
	} else {
		sb.WriteString("  AuthJWTSecret: (empty)\n")
	}
	sb.WriteString(fmt.Sprintf("  AuthIssuer: %s\n", c.AuthIssuer))
	sb.WriteString(fmt.Sprintf("  AuthAccessTTLMin: %d\n", c.AuthAccessTTLMin))
	sb.WriteString(fmt.Sprintf("  AuthRefreshTTLDays: %d\n", c.AuthRefreshTTLDays))
	sb.WriteString(fmt.Sprintf("  AuthResetTTLMin: %d\n", c.AuthResetTTLMin))
	sb.WriteString(fmt.Sprintf("  AuthPublicPaths: %s\n", c.AuthPublicPaths))
	sb.WriteString(fmt.Sprintf("  FrontendResetURL: %s\n", c.FrontendResetURL))

	return sb.String()
}

// LoadFromEnv загружает конфигурацию из переменных окружения
func LoadFromEnv() (*Config, error) {
	// Загружаем .env только для локальной разработки
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	// Регистрируем интересующие ключи окружения
	keys := []string{
		"APP_ENV", "APP_PORT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SCHEME",
		"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD",
		"AUTH_JWT_SECRET", "AUTH_ISSUER",
		"AUTH_ACCESS_TTL_MIN", "AUTH_REFRESH_TTL_DAYS", "AUTH_RESET_TTL_MIN",
		"AUTH_STORE_TIMEOUT_MS", "AUTH_PUBLIC_PATHS",
		"FRONTEND_RESET_URL",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Дефолты по ТЗ: access 15 мин, refresh 7 дней, reset 30 мин
	v.SetDefault("DB_SCHEME", "public")
	v.SetDefault("AUTH_ISSUER", "devlog-api")
	v.SetDefault("AUTH_ACCESS_TTL_MIN", 15)
	v.SetDefault("AUTH_REFRESH_TTL_DAYS", 7)
	v.SetDefault("AUTH_RESET_TTL_MIN", 30)
	v.SetDefault("AUTH_STORE_TIMEOUT_MS", 3000)
	v.SetDefault("AUTH_PUBLIC_PATHS", strings.Join(defaultPublicPaths, ","))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.AuthJWTSecret == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}
	return &cfg, nil
}

var defaultPublicPaths = []string{
	"/api/healthz",
	"/api/readyz",
	"/api/members/signup",
	"/api/members/login",
	"/api/members/check-email",
	"/api/members/refresh",
	"/api/members/password/validate",
	"/api/members/password-reset/request",
	"/api/members/password-reset/verify",
	"/api/members/password-reset/confirm",
	"/swagger/",
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

func (c *Config) AccessTTL() time.Duration  { return time.Duration(c.AuthAccessTTLMin) * time.Minute }
func (c *Config) RefreshTTL() time.Duration { return time.Duration(c.AuthRefreshTTLDays) * 24 * time.Hour }
func (c *Config) ResetTTL() time.Duration   { return time.Duration(c.AuthResetTTLMin) * time.Minute }
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.AuthStoreTimeoutMS) * time.Millisecond
}

// PublicPaths разбирает allow-list из конфига
func (c *Config) PublicPaths() []string {
	var out []string
	for _, p := range strings.Split(c.AuthPublicPaths, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
