// Package config loads service settings from the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minJWTSecretLen = 32

var ErrWeakJWTSecret = errors.New("JWT_SECRET is required and must be at least 32 chars")

type Config struct {
	HTTPAddr        string
	LogLevel        string
	JWTSecret       string
	TokenTTL        time.Duration
	MetricsEnabled  bool
	MetricsToken    string
	DatabaseURL     string
	ShutdownTimeout time.Duration
}

// Load reads ENV_FILE (default .env) when present, then the process
// environment. Variables already set in the environment win over the file.
func Load(defaultAddr string) (Config, error) {
	if err := godotenv.Load(getenv("ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	return Config{
		HTTPAddr:        httpAddr(defaultAddr),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        durenvs("TOKEN_TTL_SECONDS", 900),
		MetricsEnabled:  boolenv("METRICS_ENABLED", true),
		MetricsToken:    os.Getenv("METRICS_TOKEN"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT_SECONDS", 10),
	}, nil
}

func (c Config) ValidateJWTSecret() error {
	if len(c.JWTSecret) < minJWTSecretLen {
		return ErrWeakJWTSecret
	}
	return nil
}

// httpAddr honours HTTP_ADDR, then a bare PORT.
func httpAddr(def string) string {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		return v
	}
	if p := os.Getenv("PORT"); p != "" {
		return ":" + strings.TrimPrefix(p, ":")
	}
	return def
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

func boolenv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
