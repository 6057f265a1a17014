// Package config holds the process configuration, built once from the
// environment in main and injected into the components that need it.
package config

import (
	"errors"
	"os"
)

type Config struct {
	Port          string
	GitHubOwner   string
	GitHubRepo    string
	GitHubToken   string
	GitHubAPIBase string // empty selects the public GitHub endpoint
	RedisEndpoint string
	AllowedOrigin string // empty allows any websocket origin
	DevMode       bool
}

func FromEnv() Config {
	return Config{
		Port:          getenvDefault("PORT", "8080"),
		GitHubOwner:   os.Getenv("GITHUB_OWNER"),
		GitHubRepo:    os.Getenv("GITHUB_REPO"),
		GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		GitHubAPIBase: os.Getenv("GITHUB_API_BASE"),
		RedisEndpoint: getenvDefault("REDIS_ENDPOINT", "localhost:6379"),
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		DevMode:       os.Getenv("DEV_MODE") == "true",
	}
}

// Validate deliberately does not require the token: a server without one
// starts fine and fails each data operation instead.
func (cfg Config) Validate() error {
	if cfg.GitHubOwner == "" {
		return errors.New("GITHUB_OWNER must be set")
	}
	if cfg.GitHubRepo == "" {
		return errors.New("GITHUB_REPO must be set")
	}
	return nil
}

func getenvDefault(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
