package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Sweep     SweepConfig     `yaml:"sweep"`
}

// ServerConfig holds listen and storage settings.
type ServerConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
	DBPath  string `yaml:"db_path"`
}

// LoggingConfig holds logging configuration. AuditDir, when set, attaches
// a JSON audit sink for administrator mutations.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	AuditDir string `yaml:"audit_dir"`
}

// SecurityConfig holds request limits.
type SecurityConfig struct {
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// BroadcastConfig selects the event transport. With an empty Redis
// address events only reach in-process subscribers.
type BroadcastConfig struct {
	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`
	Channel string `yaml:"channel"`
	// GlobalMute suppresses chimes for every console on this node.
	GlobalMute bool `yaml:"global_mute"`
}

// SweepConfig schedules the unread reference sweep. Cron uses standard
// five-field syntax; empty means daily at 02:00.
type SweepConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	c.Server.Address = "127.0.0.1"
	c.Server.Port = 8080
	c.Server.DBPath = "./data"
	c.Logging.Level = "info"
	c.Security.RateLimit.RPS = 25
	c.Security.RateLimit.Burst = 50
	c.Broadcast.Channel = "console.events"
	return c
}

// Load reads the YAML config at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Addr returns the listen address in host:port form.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// SplitAddr parses a host:port flag value into its parts.
func SplitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	return host, port, nil
}
