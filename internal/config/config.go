package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvProduction represents the production environment.
	EnvProduction = "production"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Env  string `envconfig:"ENV" default:"development"`
	Port string `envconfig:"PORT" default:"8080"`

	// Security settings
	HSTSMaxAge int `envconfig:"HSTS_MAX_AGE" default:"31536000"`

	// Logging settings
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Bus settings. BusBackend selects the transport a conversation runs
	// over: "inmem" for a single process, "http" to reach a shared
	// httpbus.Server at BusURL.
	BusBackend string `envconfig:"BUS_BACKEND" default:"inmem"`
	BusURL     string `envconfig:"BUS_URL" default:"http://localhost:8080"`

	// Protocol timeouts, in milliseconds.
	ConnectTimeoutMS int `envconfig:"CONNECT_TIMEOUT_MS" default:"5000"`
	IdleTimeoutMS    int `envconfig:"IDLE_TIMEOUT_MS" default:"5000"`
}

// LoadConfig loads configuration from .env file and environment variables.
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional for development)
	if err := godotenv.Load(); err != nil {
		// Not an error if file doesn't exist (expected in production)
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	// Parse environment variables into config struct
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	return &config, nil
}
