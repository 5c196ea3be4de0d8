package config

import (
	"fmt"
	"strconv"
	"time"

	"foodgram-backend/internal/infrastructure/database"
)

// LoadDatabaseConfig reads the pool settings from environment variables
func LoadDatabaseConfig() (*database.DBConfig, error) {
	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNECTIONS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNECTIONS: %w", err)
	}

	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNECTIONS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNECTIONS: %w", err)
	}
	if minConns > maxConns {
		return nil, fmt.Errorf("DB_MIN_CONNECTIONS (%d) exceeds DB_MAX_CONNECTIONS (%d)", minConns, maxConns)
	}

	maxRetries, err := strconv.Atoi(getEnv("DB_MAX_RETRIES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_RETRIES: %w", err)
	}

	maxConnLifetime, err := getEnvDuration("DB_MAX_CONN_LIFETIME", "5m")
	if err != nil {
		return nil, err
	}

	maxConnIdleTime, err := getEnvDuration("DB_MAX_CONN_IDLE_TIME", "1m")
	if err != nil {
		return nil, err
	}

	healthCheckPeriod, err := getEnvDuration("DB_HEALTH_CHECK_PERIOD", "1m")
	if err != nil {
		return nil, err
	}

	retryDelay, err := getEnvDuration("DB_RETRY_DELAY", "1s")
	if err != nil {
		return nil, err
	}

	connectTimeout, err := getEnvDuration("DB_CONNECT_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	return &database.DBConfig{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              port,
		Username:          getEnv("DB_USER", "foodgram"),
		Password:          getEnv("DB_PASSWORD", "foodgram"),
		DBName:            getEnv("DB_NAME", "foodgram"),
		SSLMode:           getEnv("DB_SSLMODE", "disable"),
		MaxConns:          int32(maxConns),
		MinConns:          int32(minConns),
		MaxConnLifetime:   maxConnLifetime,
		MaxConnIdleTime:   maxConnIdleTime,
		HealthCheckPeriod: healthCheckPeriod,
		MaxRetries:        maxRetries,
		RetryDelay:        retryDelay,
		ConnectTimeout:    connectTimeout,
	}, nil
}

func getEnvDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
