/*
Package configs is responsible for loading and parsing the application's
configuration settings from operating system environment variables.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"roomchat/internal/app/chat"
)

// AppConfig contains all configuration parameters required for the
// application to run. All values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string

	// QueueCapacity bounds each connection's outbound delivery queue.
	QueueCapacity int
}

// LoadConfig reads and parses the application configuration from environment
// variables, providing defaults and performing type conversion and validation.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Security Settings ---
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	// --- Delivery Settings ---
	capacityStr := os.Getenv("OUTBOUND_QUEUE_CAPACITY")
	if capacityStr == "" {
		cfg.QueueCapacity = chat.DefaultQueueCapacity
	} else {
		capacity, err := strconv.Atoi(capacityStr)
		if err != nil {
			return nil, fmt.Errorf("invalid OUTBOUND_QUEUE_CAPACITY environment variable: %w", err)
		}
		if capacity < 1 {
			return nil, fmt.Errorf("OUTBOUND_QUEUE_CAPACITY must be at least 1, got %d", capacity)
		}
		cfg.QueueCapacity = capacity
	}

	return cfg, nil
}
