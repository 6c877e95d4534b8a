package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/shiritori/go/internal/game/clock"
	"github.com/mcdev12/shiritori/go/internal/relay"
)

type Config struct {
	API struct {
		Host   string `yaml:"host"`
		Secure bool   `yaml:"secure"`
	} `yaml:"api"`

	Player struct {
		Name string `yaml:"name"`
	} `yaml:"player"`

	LogLevel     string        `yaml:"log_level"`
	TickInterval time.Duration `yaml:"tick_interval"`

	History struct {
		Path  string `yaml:"path"`
		Limit int    `yaml:"limit"`
	} `yaml:"history"`

	Relay struct {
		URL       string `yaml:"url"`
		Subject   string `yaml:"subject"`
		JetStream bool   `yaml:"jetstream"`
	} `yaml:"relay"`
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.API.Host = "127.0.0.1:8000"
	cfg.LogLevel = "info"
	cfg.TickInterval = clock.DefaultTickInterval
	cfg.History.Limit = 5
	cfg.Relay.Subject = relay.DefaultConfig().SubjectPrefix
	return cfg
}

// loadConfig reads the optional YAML file and then overlays the environment.
// A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	config.API.Host = getEnv("SHIRITORI_API_HOST", config.API.Host)
	config.API.Secure = getEnvAsBool("SHIRITORI_SECURE", config.API.Secure)
	config.Player.Name = getEnv("SHIRITORI_PLAYER_NAME", config.Player.Name)
	config.LogLevel = getEnv("SHIRITORI_LOG_LEVEL", config.LogLevel)
	config.TickInterval = getEnvAsDuration("SHIRITORI_TICK_INTERVAL", config.TickInterval)
	config.History.Path = getEnv("SHIRITORI_HISTORY_PATH", config.History.Path)
	config.History.Limit = getEnvAsInt("SHIRITORI_HISTORY_LIMIT", config.History.Limit)
	config.Relay.URL = getEnv("NATS_URL", config.Relay.URL)
	config.Relay.Subject = getEnv("SHIRITORI_RELAY_SUBJECT", config.Relay.Subject)
	config.Relay.JetStream = getEnvAsBool("SHIRITORI_RELAY_JETSTREAM", config.Relay.JetStream)

	if config.API.Host == "" {
		return nil, errors.New("api host is required")
	}
	return config, nil
}

// baseURL is the REST origin; the realtime scheme follows the same secure flag.
func (c *Config) baseURL() string {
	if c.API.Secure {
		return "https://" + c.API.Host
	}
	return "http://" + c.API.Host
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
