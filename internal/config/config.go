package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBUser  string
	DBPass  string
	DBHost  string
	DBPort  string
	DBName  string
	SSLMode string

	RedisHost string
	RedisPort string

	NatsHost string
	NatsPort string

	ApiPort    string
	ApiEnabled string

	JWTSecret string

	// Vendor gateway credentials. A vendor with an empty URL is skipped by
	// the gateway registry, so local setups can run with a subset.
	DatastationURL   string
	DatastationToken string
	SmePlugURL       string
	SmePlugToken     string
	A4BDataURL       string
	A4BDataToken     string
}

// New loads and validates configuration from environment variables.
// HTTP API is optional: if VENDORA_API_ENABLED != "true", ApiAddr() returns
// an error and the HTTP server simply won't start.
func New() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBUser:           os.Getenv("VENDORA_POSTGRES_USER"),
		DBPass:           os.Getenv("VENDORA_POSTGRES_PASSWORD"),
		DBHost:           os.Getenv("VENDORA_POSTGRES_HOST"),
		DBPort:           os.Getenv("VENDORA_POSTGRES_PORT"),
		DBName:           os.Getenv("VENDORA_POSTGRES_DB"),
		SSLMode:          os.Getenv("VENDORA_POSTGRES_SSLMODE"),
		RedisHost:        os.Getenv("VENDORA_REDIS_HOST"),
		RedisPort:        os.Getenv("VENDORA_REDIS_PORT"),
		NatsHost:         os.Getenv("VENDORA_NATS_HOST"),
		NatsPort:         os.Getenv("VENDORA_NATS_PORT"),
		ApiPort:          os.Getenv("VENDORA_API_PORT"),
		ApiEnabled:       os.Getenv("VENDORA_API_ENABLED"),
		JWTSecret:        os.Getenv("VENDORA_JWT_SECRET"),
		DatastationURL:   os.Getenv("VENDORA_DATASTATION_URL"),
		DatastationToken: os.Getenv("VENDORA_DATASTATION_TOKEN"),
		SmePlugURL:       os.Getenv("VENDORA_SMEPLUG_URL"),
		SmePlugToken:     os.Getenv("VENDORA_SMEPLUG_TOKEN"),
		A4BDataURL:       os.Getenv("VENDORA_A4BDATA_URL"),
		A4BDataToken:     os.Getenv("VENDORA_A4BDATA_TOKEN"),
	}

	// Required: database
	if cfg.DBUser == "" || cfg.DBHost == "" || cfg.DBName == "" || cfg.SSLMode == "" {
		return nil, fmt.Errorf("missing required env for database: VENDORA_POSTGRES_USER/HOST/DB/SSLMODE")
	}

	// Required: redis
	if cfg.RedisHost == "" || cfg.RedisPort == "" {
		return nil, fmt.Errorf("missing required env for redis: VENDORA_REDIS_HOST/PORT")
	}

	// Required: nats (event bus + command handler)
	if cfg.NatsHost == "" || cfg.NatsPort == "" {
		return nil, fmt.Errorf("missing required env for nats: VENDORA_NATS_HOST/PORT")
	}

	// Required: auth
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env: VENDORA_JWT_SECRET")
	}

	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName, c.SSLMode)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func (c *Config) NatsAddr() string {
	return fmt.Sprintf("nats://%s:%s", c.NatsHost, c.NatsPort)
}

// ApiAddr returns the HTTP listen address if the API is enabled.
// Returns an error if VENDORA_API_ENABLED != "true" — callers should skip
// starting the HTTP server.
func (c *Config) ApiAddr() (string, error) {
	if c.ApiEnabled == "true" {
		if c.ApiPort == "" {
			return "", fmt.Errorf("VENDORA_API_PORT is required when VENDORA_API_ENABLED=true")
		}
		return ":" + c.ApiPort, nil
	}
	return "", fmt.Errorf("HTTP API is disabled (VENDORA_API_ENABLED != true)")
}
