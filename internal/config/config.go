package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	MinIO     MinIOConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	// PublicURL is the externally visible origin used to build short links
	// and recipe detail redirects, e.g. https://foodgram.example.com
	PublicURL string
	// CORSOrigins is the comma separated CORS_ALLOWED_ORIGINS list
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

// AccessTTL is the access token lifetime.
func (j JWTConfig) AccessTTL() time.Duration {
	return time.Duration(j.AccessTokenExpiry) * time.Minute
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string // foodgram
	UseSSL    bool
	// PublicURL overrides the scheme://host prefix of returned object URLs
	// when objects are served through a CDN or reverse proxy.
	PublicURL string
}

type RateLimitConfig struct {
	LoginPerMinute int
	LoginBurst     int
}

// Load reads config from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Foodgram API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			PublicURL:   strings.TrimRight(getEnv("APP_PUBLIC_URL", "http://localhost:8080"), "/"),
			CORSOrigins: getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "foodgram"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "foodgram"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 24*60),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "foodgram"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			PublicURL: strings.TrimRight(getEnv("MINIO_PUBLIC_URL", ""), "/"),
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: getEnvInt("LOGIN_RATE_PER_MINUTE", 10),
			LoginBurst:     getEnvInt("LOGIN_RATE_BURST", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the config is usable for the current environment
func (c *Config) Validate() error {
	if c.JWT.AccessTokenExpiry <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRY must be positive")
	}
	if c.RateLimit.LoginPerMinute <= 0 || c.RateLimit.LoginBurst <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MINUTE and LOGIN_RATE_BURST must be positive")
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
