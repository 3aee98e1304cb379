// Package config holds the immutable process configuration. It is built once
// at startup and passed by reference; nothing in here changes after Load.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full configuration of the session credential service.
type Config struct {
	ServerPort string
	Env        string
	AppName    string

	// Token settings. Issuer and Audience are embedded in every token;
	// validity durations drive both claim expiry and registry TTLs.
	Issuer          string
	Audience        string
	AccessValidity  time.Duration
	RefreshValidity time.Duration

	// PEM key file locations for the RS256 signing pair.
	PrivateKeyPath string
	PublicKeyPath  string

	// Registry (Redis) connection.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from the environment. A .env file is honoured when
// present but never required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		AppName:         getEnv("APP_NAME", "Edu Manager Auth"),
		Issuer:          getEnv("JWT_ISSUER", "edu-manager"),
		Audience:        getEnv("JWT_AUDIENCE", "edu-manager-api"),
		AccessValidity:  getDuration("JWT_ACCESS_VALIDITY", 24*time.Hour),
		RefreshValidity: getDuration("JWT_REFRESH_VALIDITY", 7*24*time.Hour),
		PrivateKeyPath:  getEnv("JWT_PRIVATE_KEY_PATH", "./keys/private.pem"),
		PublicKeyPath:   getEnv("JWT_PUBLIC_KEY_PATH", "./keys/public.pem"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		RedisDB:         0,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.Issuer == "" {
		return fmt.Errorf("JWT_ISSUER cannot be empty")
	}

	if c.Audience == "" {
		return fmt.Errorf("JWT_AUDIENCE cannot be empty")
	}

	if c.AccessValidity <= 0 {
		return fmt.Errorf("JWT_ACCESS_VALIDITY must be positive")
	}

	if c.RefreshValidity <= c.AccessValidity {
		return fmt.Errorf("JWT_REFRESH_VALIDITY must exceed JWT_ACCESS_VALIDITY")
	}

	if strings.TrimSpace(c.PrivateKeyPath) == "" {
		return fmt.Errorf("JWT_PRIVATE_KEY_PATH cannot be empty")
	}

	if strings.TrimSpace(c.PublicKeyPath) == "" {
		return fmt.Errorf("JWT_PUBLIC_KEY_PATH cannot be empty")
	}

	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR cannot be empty")
	}

	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	port := c.ServerPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}
