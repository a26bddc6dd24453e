package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the full huddle server configuration. Values load in layers:
// built-in defaults, then an optional YAML file, then environment variables.
// Later layers win.
type Config struct {
	DataDir string `yaml:"dataDir" env:"HUDDLE_DATA_DIR"`

	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`

	Messenger MessengerConfig `yaml:"messenger"`
}

// ServerConfig controls the HTTP API listener
type ServerConfig struct {
	ListenAddr string `yaml:"listenAddr" env:"HUDDLE_LISTEN_ADDR"`
}

// LogConfig controls the global logger
type LogConfig struct {
	Level string `yaml:"level" env:"HUDDLE_LOG_LEVEL"`
	JSON  bool   `yaml:"json" env:"HUDDLE_LOG_JSON"`
}

// MessengerConfig configures the outbound chat webhook. Delivery is disabled
// when BaseURL is empty.
type MessengerConfig struct {
	BaseURL string `yaml:"baseUrl" env:"HUDDLE_MESSENGER_URL"`
	Token   string `yaml:"token" env:"HUDDLE_MESSENGER_TOKEN"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:8420",
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// Load builds the effective configuration. path may be empty, in which case
// only defaults and environment variables apply. A missing file at an
// explicit path is an error; unknown YAML keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DataDir == "" {
		return nil, fmt.Errorf("dataDir must not be empty")
	}
	if cfg.Server.ListenAddr == "" {
		return nil, fmt.Errorf("server.listenAddr must not be empty")
	}
	return cfg, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/var/lib/huddle"
	}
	return filepath.Join(home, ".huddle")
}
