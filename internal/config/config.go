package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TokenSecret       string
	TokenHeader       string
	TokenTTLMinutes   int
	RefreshTTLMinutes int

	LoginPaths []string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:          addr,
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           envIntDefault("REDIS_DB", 0),
		TokenSecret:       os.Getenv("TOKEN_SECRET"),
		TokenHeader:       envDefault("TOKEN_HEADER", "X-Access-Token"),
		TokenTTLMinutes:   envIntDefault("TOKEN_TTL_MINUTES", 60),
		RefreshTTLMinutes: envIntDefault("REFRESH_TTL_MINUTES", 7*24*60),
		LoginPaths:        envListDefault("LOGIN_PATHS", []string{"/login", "/app/login", "/healthz"}),
	}
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLMinutes) * time.Minute
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envListDefault(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
