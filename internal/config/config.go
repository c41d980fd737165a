package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	CookieSecure     bool

	// Microsoft Entra ID (optional SSO)
	AzureClientID string
	AzureTenantID string

	// Redis (optional stats cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Caching
	StatsCacheMaxAge time.Duration
	ClientStaleTime  time.Duration

	// Contact button shown to employees
	ContactURL   string
	ContactLabel string

	// Server
	Port        string
	CORSOrigins string
	StaticDir   string
}

var defaults = map[string]any{
	"DB_HOST":     "localhost",
	"DB_PORT":     "5432",
	"DB_USER":     "postgres",
	"DB_PASSWORD": "",
	"DB_NAME":     "onboarding_db",
	"DB_SSLMODE":  "disable",

	"JWT_SECRET":         "",
	"JWT_ACCESS_EXPIRY":  "15m",
	"JWT_REFRESH_EXPIRY": "168h",
	"COOKIE_SECURE":      false,

	"AZURE_AD_CLIENT_ID": "",
	"AZURE_AD_TENANT_ID": "common",

	"REDIS_ADDR":     "",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"STATS_CACHE_MAX_AGE": "30s",
	"CLIENT_STALE_TIME":   "60s",

	"CONTACT_URL":   "https://teams.microsoft.com/l/chat/0/0",
	"CONTACT_LABEL": "Contact your onboarding trainer",

	"PORT":         "8080",
	"CORS_ORIGINS": "*",
	"STATIC_DIR":   "",
}

// Load reads configuration from defaults, an optional onboarding.yaml and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("onboarding")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTAccessExpiry:  durationOr(v, "JWT_ACCESS_EXPIRY", 15*time.Minute),
		JWTRefreshExpiry: durationOr(v, "JWT_REFRESH_EXPIRY", 168*time.Hour),
		CookieSecure:     v.GetBool("COOKIE_SECURE"),

		AzureClientID: v.GetString("AZURE_AD_CLIENT_ID"),
		AzureTenantID: v.GetString("AZURE_AD_TENANT_ID"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		StatsCacheMaxAge: durationOr(v, "STATS_CACHE_MAX_AGE", 0),
		ClientStaleTime:  durationOr(v, "CLIENT_STALE_TIME", time.Minute),

		ContactURL:   v.GetString("CONTACT_URL"),
		ContactLabel: v.GetString("CONTACT_LABEL"),

		Port:        v.GetString("PORT"),
		CORSOrigins: v.GetString("CORS_ORIGINS"),
		StaticDir:   v.GetString("STATIC_DIR"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// EntraEnabled reports whether Microsoft Entra ID sign-in is configured.
func (c *Config) EntraEnabled() bool {
	return c.AzureClientID != ""
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
