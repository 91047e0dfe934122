package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the console engine.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Stream  StreamConfig  `yaml:"stream"`
	Console ConsoleConfig `yaml:"console"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig controls the HTTP API and metrics listeners.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// StreamConfig configures the event source. An empty endpoint selects
// simulation mode; the endpoint is always explicit configuration, never
// read from ambient process state at source construction.
type StreamConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	TickInterval time.Duration `yaml:"tickInterval"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
}

// ConsoleConfig sizes the buffer and the viewport geometry defaults.
type ConsoleConfig struct {
	Capacity        int     `yaml:"capacity"`
	RowHeight       float64 `yaml:"rowHeight"`
	ViewportHeight  float64 `yaml:"viewportHeight"`
	BottomTolerance float64 `yaml:"bottomTolerance"`
}

// AuthConfig holds the session boundary settings. The console only checks
// that an authenticated session exists; token issuance lives elsewhere.
type AuthConfig struct {
	Token string `yaml:"token"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("EDOS_CONSOLE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.Console.Capacity <= 0 {
		return nil, fmt.Errorf("console capacity must be positive, got %d", cfg.Console.Capacity)
	}
	if cfg.Stream.TickInterval <= 0 {
		return nil, fmt.Errorf("stream tick interval must be positive, got %v", cfg.Stream.TickInterval)
	}

	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8090",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Stream: StreamConfig{
			Endpoint:     "",
			TickInterval: 700 * time.Millisecond,
			DialTimeout:  5 * time.Second,
		},
		Console: ConsoleConfig{
			Capacity:        5000,
			RowHeight:       28,
			ViewportHeight:  560,
			BottomTolerance: 32,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EDOS_CONSOLE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("EDOS_CONSOLE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("EDOS_CONSOLE_GRACEFUL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.GracefulTimeout = d
		}
	}
	if v, ok := os.LookupEnv("EDOS_CONSOLE_STREAM_ENDPOINT"); ok {
		cfg.Stream.Endpoint = v
	}
	if v := os.Getenv("EDOS_CONSOLE_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Stream.TickInterval = d
		}
	}
	if v := os.Getenv("EDOS_CONSOLE_DIAL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Stream.DialTimeout = d
		}
	}
	if v := os.Getenv("EDOS_CONSOLE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Console.Capacity = n
		}
	}
	if v := os.Getenv("EDOS_CONSOLE_ROW_HEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Console.RowHeight = f
		}
	}
	if v := os.Getenv("EDOS_CONSOLE_VIEWPORT_HEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Console.ViewportHeight = f
		}
	}
	if v := os.Getenv("EDOS_CONSOLE_BOTTOM_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Console.BottomTolerance = f
		}
	}
	if v := os.Getenv("EDOS_CONSOLE_AUTH_TOKEN"); v != "" {
		cfg.Auth.Token = v
	}
	if v := os.Getenv("EDOS_CONSOLE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("EDOS_CONSOLE_LOG_FORMAT"); strings.EqualFold(v, "json") {
		cfg.Logging.JSON = true
	}
}
