package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port        string
	GinMode     string
	BaseURL     string
	CORSOrigins []string
	AppEnv      string

	// Database
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	AutoMigrate    bool
	MigrationsPath string

	// JWT
	JWTSecret string
	JWTTTL    time.Duration

	RedisURL string

	// Location is used to compute same-day event windows.
	Location *time.Location

	LogLevel  string
	SentryDSN string
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "rides")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("AUTO_MIGRATE", "false")
	v.SetDefault("MIGRATIONS_PATH", "migrations")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("TIME_ZONE", "UTC")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads configuration from the environment, after merging an optional
// .env file. All invalid values are reported together.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	cfg := &Config{
		Port:           v.GetString("PORT"),
		GinMode:        v.GetString("GIN_MODE"),
		BaseURL:        strings.TrimRight(v.GetString("BASE_URL"), "/"),
		CORSOrigins:    splitAndTrim(v.GetString("CORS_ORIGINS")),
		AppEnv:         v.GetString("APP_ENV"),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		DBSSLMode:      v.GetString("DB_SSLMODE"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		RedisURL:       v.GetString("REDIS_URL"),
		LogLevel:       strings.ToLower(v.GetString("LOG_LEVEL")),
		SentryDSN:      v.GetString("SENTRY_DSN"),
	}

	var errs []error

	cfg.AutoMigrate = strings.EqualFold(v.GetString("AUTO_MIGRATE"), "true")

	ttl, err := time.ParseDuration(v.GetString("JWT_TTL"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid JWT_TTL: %w", err))
	} else if ttl <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be > 0"))
	}
	cfg.JWTTTL = ttl

	loc, err := time.LoadLocation(v.GetString("TIME_ZONE"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid TIME_ZONE: %w", err))
		loc = time.UTC
	}
	cfg.Location = loc

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	return cfg, errors.Join(errs...)
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// MigrateURL is the database URL form expected by golang-migrate.
func (c *Config) MigrateURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
