package main

import "os"

// Config captures process-level configuration.
type Config struct {
	Addr        string
	DatabaseURL string
	RedisURL    string
	BasePath    string
}

// FromEnv builds the config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("PORTAL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return Config{
		Addr:        addr,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		BasePath:    os.Getenv("PORTAL_BASE_PATH"),
	}
}
