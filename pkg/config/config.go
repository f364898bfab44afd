package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// BackendConfig holds the endpoints of the two REST backends
type BackendConfig struct {
	AuthBaseURL   string
	ClinicBaseURL string
	Timeout       time.Duration
}

// ServerConfig holds configuration for the local stub server
type ServerConfig struct {
	Port string
	Env  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	Backend     BackendConfig
	Server      ServerConfig
	Log         LogConfig
	Metrics     MetricsConfig
}

// Load loads configuration from a .env file and environment variables
func Load(serviceName string) (*Config, error) {
	// .env file is optional
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		ServiceName: serviceName,
		Backend: BackendConfig{
			AuthBaseURL:   getEnv("AUTH_SERVER_URL", "http://localhost:8080"),
			ClinicBaseURL: getEnv("CLINIC_API_URL", "http://localhost:8081"),
			Timeout:       getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8082"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", serviceName),
		},
	}

	return config, nil
}

// LogConfig returns the configuration as zap fields for startup logging
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("auth_server_url", c.Backend.AuthBaseURL),
		zap.String("clinic_api_url", c.Backend.ClinicBaseURL),
		zap.Duration("http_timeout", c.Backend.Timeout),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
