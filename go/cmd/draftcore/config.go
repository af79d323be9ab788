package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application's static configuration: server/transport
// settings load from config.yaml; database settings come from the
// environment (dbconfig), and PORT / NATS_URL are read from the
// environment only when config.yaml leaves the port or NATS URL empty
// (§6 external interfaces, §4.8 ambient stack), mirroring the teacher's
// split between config.yaml
// (internal/cmd/config.go) and *_from_env constructors (dbconfig).
type Config struct {
	HTTP struct {
		Port string `yaml:"port"`
	} `yaml:"http"`
	NATS struct {
		Enabled       bool   `yaml:"enabled"`
		URL           string `yaml:"url"`
		StreamName    string `yaml:"stream_name"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`
	Outbox struct {
		PollIntervalSeconds int `yaml:"poll_interval_seconds"`
		BatchSize           int `yaml:"batch_size"`
	} `yaml:"outbox"`
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.HTTP.Port == "" {
		cfg.HTTP.Port = getEnv("PORT", "8080")
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = getEnv("NATS_URL", "nats://localhost:4222")
	}
	if cfg.NATS.StreamName == "" {
		cfg.NATS.StreamName = "DRAFT_EVENTS"
	}
	if cfg.NATS.SubjectPrefix == "" {
		cfg.NATS.SubjectPrefix = "draft"
	}
	if cfg.Outbox.PollIntervalSeconds == 0 {
		cfg.Outbox.PollIntervalSeconds = 5
	}
	if cfg.Outbox.BatchSize == 0 {
		cfg.Outbox.BatchSize = 100
	}
	return &cfg, nil
}

func (c *Config) outboxPollInterval() time.Duration {
	return time.Duration(c.Outbox.PollIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
