package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string
	Redis         RedisConfig
}

// RedisConfig holds connection settings for the derived-result cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ResultTTL    time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("STAYLEDGER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return Server{
		Addr: addr,
		// Empty means the in-memory store; set to a postgres DSN to persist.
		DatabaseURL: os.Getenv("STAYLEDGER_DATABASE_URL"),
		// Empty disables API authentication (development mode).
		JWTSigningKey: os.Getenv("STAYLEDGER_JWT_SIGNING_KEY"),
		Redis: RedisConfig{
			URL:          os.Getenv("STAYLEDGER_REDIS_URL"),
			PoolSize:     envInt("STAYLEDGER_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("STAYLEDGER_REDIS_MIN_IDLE", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			ResultTTL:    24 * time.Hour,
		},
	}
}

func envInt(key string, fallback int) int {
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
