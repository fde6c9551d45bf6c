package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML overlay on top of the environment. Every
// field has a working default so auctiond runs with no config file at
// all.
type Config struct {
	Supervisor struct {
		PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	} `yaml:"supervisor"`
	Events struct {
		StreamName      string `yaml:"stream_name"`
		SubjectPrefix   string `yaml:"subject_prefix"`
		MaxAgeHours     int    `yaml:"max_age_hours"`
		DuplicateWindow int    `yaml:"duplicate_window_minutes"`
	} `yaml:"events"`
	Snapshots struct {
		Bucket  string `yaml:"bucket"`
		TTLDays int    `yaml:"ttl_days"`
	} `yaml:"snapshots"`
}

func defaultConfig() *Config {
	var cfg Config
	cfg.Supervisor.PollIntervalSeconds = 5
	cfg.Events.StreamName = "AUCTION_EVENTS"
	cfg.Events.SubjectPrefix = "auction.events"
	cfg.Events.MaxAgeHours = 24
	cfg.Events.DuplicateWindow = 120
	cfg.Snapshots.Bucket = "auction-state"
	cfg.Snapshots.TTLDays = 7
	return &cfg
}

func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) pollInterval() time.Duration {
	return time.Duration(c.Supervisor.PollIntervalSeconds) * time.Second
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
