// Package config reads BF2 service configuration from the environment,
// following the same getEnv/getEnvAsInt convention the composition
// engine's db package uses.
package config

import (
	"os"
	"strconv"
)

// Config holds everything the service shell needs to start: database
// connection parameters, the HTTP listen address, JWT signing material,
// and the allowed CORS origins.
type Config struct {
	Driver   string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	ListenAddr   string
	JWTSecret    string
	CORSOrigins  []string
}

// FromEnv builds a Config from environment variables, falling back to
// development defaults for anything unset.
func FromEnv() Config {
	return Config{
		Driver:   getEnv("BF2_DB_DRIVER", "postgres"),
		Host:     getEnv("BF2_DB_HOST", "localhost"),
		Port:     getEnvAsInt("BF2_DB_PORT", 5432),
		Database: getEnv("BF2_DB_NAME", "bf2"),
		Username: getEnv("BF2_DB_USER", "bf2"),
		Password: getEnv("BF2_DB_PASSWORD", "bf2_dev"),
		SSLMode:  getEnv("BF2_DB_SSL_MODE", "disable"),

		ListenAddr:  getEnv("BF2_LISTEN_ADDR", ":8089"),
		JWTSecret:   getEnv("BF2_JWT_SECRET", "dev-secret-change-me"),
		CORSOrigins: []string{getEnv("BF2_CORS_ORIGIN", "*")},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
