package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config models betboard.yml.
type Config struct {
	Board struct {
		Name      string   `yaml:"name"`
		SeedUsers []string `yaml:"seed_users"`
	} `yaml:"board"`
	Remote struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		OfflineQueue   bool   `yaml:"offline_queue"`
	} `yaml:"remote"`
	Server struct {
		Addr      string `yaml:"addr"`
		BasePath  string `yaml:"base_path"`
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"server"`
	Notifications struct {
		TTLSeconds int `yaml:"ttl_seconds"`
	} `yaml:"notifications"`
}

// RemoteTimeout returns the remote request timeout.
func (c *Config) RemoteTimeout() time.Duration {
	if c.Remote.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

// NotificationTTL returns how long a notification lives before self-expiry.
func (c *Config) NotificationTTL() time.Duration {
	if c.Notifications.TTLSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Notifications.TTLSeconds) * time.Second
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Board.Name == "" {
		return fmt.Errorf("config.board.name is required")
	}
	if c.Remote.TimeoutSeconds < 0 {
		return fmt.Errorf("config.remote.timeout_seconds must not be negative")
	}
	if c.Notifications.TTLSeconds < 0 {
		return fmt.Errorf("config.notifications.ttl_seconds must not be negative")
	}
	seen := map[string]bool{}
	for _, name := range c.Board.SeedUsers {
		if name == "" {
			return fmt.Errorf("config.board.seed_users contains an empty name")
		}
		if seen[name] {
			return fmt.Errorf("config.board.seed_users contains duplicate name %s", name)
		}
		seen[name] = true
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "betboard.yml")
}

// Load reads and validates config from the workspace, falling back to the
// defaults when no file exists.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GenerateDefault returns the default config YAML, for `bb init`.
func GenerateDefault() string {
	return defaultTemplate
}

const defaultTemplate = `board:
  name: betboard
  seed_users:
    - Steve P
    - Jane D
    - John Doe
    - Emily R
    - Michael B

remote:
  base_url: ""
  timeout_seconds: 10
  offline_queue: true

server:
  addr: 127.0.0.1:8080
  base_path: /api

notifications:
  ttl_seconds: 5
`
