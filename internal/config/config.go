package config

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	once     sync.Once
	instance *Config
)

// ComponentConfig holds the basic network settings for a service binary.
type ComponentConfig struct {
	Protocol string `yaml:"protocol"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Debug    bool   `yaml:"debug"`
}

// BackendConfig describes the hosted document-database backend.
type BackendConfig struct {
	URL        string  `yaml:"url"`
	TimeoutRaw string  `yaml:"timeout"` // e.g. "5s"
	RatePerSec float64 `yaml:"rate_per_sec"`
	RateBurst  int     `yaml:"rate_burst"`
	Debug      bool    `yaml:"debug"`

	Timeout time.Duration `yaml:"-"`
}

// StoreConfig points at the local catalog database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig points at the user file consumed by the auth manager.
type AuthConfig struct {
	UsersFile string `yaml:"users_file"`
}

// CLIConfig holds settings for the interactive shell (not a service).
type CLIConfig struct {
	GatewayURL  string `yaml:"gateway_url"`
	HistoryFile string `yaml:"history_file"`
	Debug       bool   `yaml:"debug"`
}

// MetricsConfig holds settings for the metrics exporter.
type MetricsConfig struct {
	Port int `yaml:"port"`
}

// Config is the root of the configuration tree, strictly matching ebiblio.yaml.
type Config struct {
	Gateway ComponentConfig `yaml:"gateway"`
	Backend BackendConfig   `yaml:"backend"`
	Store   StoreConfig     `yaml:"store"`
	Auth    AuthConfig      `yaml:"auth"`
	CLI     CLIConfig       `yaml:"cli"`
	Metrics MetricsConfig   `yaml:"metrics"`
}

// Get returns the initialized configuration object (Singleton).
func Get() *Config {
	once.Do(func() {
		path := os.Getenv("EBIBLIO_CONFIG")
		if path == "" {
			path = "ebiblio.yaml"
		}

		f, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("[CONFIG ERROR] Could not read %s: %v", path, err)
		}

		instance = &Config{}
		if err := yaml.Unmarshal(f, instance); err != nil {
			log.Fatalf("[CONFIG ERROR] Failed to parse YAML: %v", err)
		}
		instance.applyDefaults()
	})
	return instance
}

func (c *Config) applyDefaults() {
	c.Backend.Timeout = 5 * time.Second
	if c.Backend.TimeoutRaw != "" {
		d, err := time.ParseDuration(c.Backend.TimeoutRaw)
		if err != nil {
			log.Fatalf("[CONFIG ERROR] Bad backend timeout %q: %v", c.Backend.TimeoutRaw, err)
		}
		c.Backend.Timeout = d
	}
	if c.Backend.RatePerSec == 0 {
		c.Backend.RatePerSec = 10
	}
	if c.Backend.RateBurst == 0 {
		c.Backend.RateBurst = 20
	}
	if c.Store.Path == "" {
		c.Store.Path = "ebiblio.db"
	}
	if c.CLI.GatewayURL == "" {
		c.CLI.GatewayURL = "http://localhost:8080"
	}
	if c.CLI.HistoryFile == "" {
		c.CLI.HistoryFile = ".ebiblio_history"
	}
}

// Address returns host:port (handy for listeners).
func (c ComponentConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// FullURL returns protocol://host:port (handy for HTTP clients).
func (c ComponentConfig) FullURL() string {
	return fmt.Sprintf("%s://%s:%d", c.Protocol, c.Host, c.Port)
}
