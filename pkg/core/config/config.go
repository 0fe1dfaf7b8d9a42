// ============================================================================
// funlang - Integer Language Toolchain
// ============================================================================
//
// Package:     config
// Description: Typed application configuration loaded from TOML or YAML
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	coreconfig "github.com/msto63/funlang/foundation/core/config"
	mdwerror "github.com/msto63/funlang/foundation/core/error"
	mdwlog "github.com/msto63/funlang/foundation/core/log"
)

// AppName names the config file and the user config directory
const AppName = "funlang"

// EnvPrefix prefixes environment overrides, e.g. FUNLANG_GRPC_PORT
const EnvPrefix = "FUNLANG"

// Config holds the complete application configuration
type Config struct {
	General     GeneralConfig     `toml:"general" yaml:"general"`
	Interpreter InterpreterConfig `toml:"interpreter" yaml:"interpreter"`
	History     HistoryConfig     `toml:"history" yaml:"history"`
	GRPC        GRPCConfig        `toml:"grpc" yaml:"grpc"`
	WebSocket   WebSocketConfig   `toml:"websocket" yaml:"websocket"`

	// path the configuration was read from, empty for defaults
	source string
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
	DataDir   string `toml:"data_dir" yaml:"data_dir"`
}

// InterpreterConfig bounds program execution
type InterpreterConfig struct {
	MaxCallDepth   int      `toml:"max_call_depth" yaml:"max_call_depth"`
	MaxSourceBytes int      `toml:"max_source_bytes" yaml:"max_source_bytes"`
	Timeout        Duration `toml:"timeout" yaml:"timeout"`

	// ParseCacheSize bounds the number of parsed programs kept for reuse
	ParseCacheSize int `toml:"parse_cache_size" yaml:"parse_cache_size"`
}

// HistoryConfig holds run history settings
type HistoryConfig struct {
	Enabled   *bool    `toml:"enabled" yaml:"enabled"`
	Path      string   `toml:"path" yaml:"path"`
	Retention Duration `toml:"retention" yaml:"retention"`
}

// GRPCConfig holds the gRPC listener settings
type GRPCConfig struct {
	Host string `toml:"host" yaml:"host"`
	Port int    `toml:"port" yaml:"port"`
}

// WebSocketConfig holds the WebSocket listener settings
type WebSocketConfig struct {
	Host string `toml:"host" yaml:"host"`
	Port int    `toml:"port" yaml:"port"`
	Path string `toml:"path" yaml:"path"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists, with
// environment overrides applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnv(coreconfig.FromEnv(EnvPrefix))
	cfg.expandEnvVars()
	return cfg
}

// Load loads configuration from a TOML or YAML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	var cfg Config
	if err := coreconfig.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	cfg.source = path

	cfg.applyDefaults()
	cfg.applyEnv(coreconfig.FromEnv(EnvPrefix))
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads the file named by FUNLANG_CONFIG, else the first file
// found in the default locations, else the defaults
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return Load(path)
	}

	path, err := coreconfig.FindConfigFile(coreconfig.DefaultDiscoveryOptions(AppName))
	if err != nil {
		if mdwerror.HasCode(err, mdwerror.CodeNotFound) {
			cfg := Default()
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}
	return Load(path)
}

// Source returns the file the configuration came from, or "" for defaults
func (c *Config) Source() string {
	return c.source
}

// HistoryEnabled reports whether runs are recorded
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

// GRPCAddress returns host:port of the gRPC listener
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.GRPC.Host, c.GRPC.Port)
}

// WebSocketAddress returns host:port of the WebSocket listener
func (c *Config) WebSocketAddress() string {
	return fmt.Sprintf("%s:%d", c.WebSocket.Host, c.WebSocket.Port)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var problems []string

	if _, err := mdwlog.ParseLevel(c.General.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("general.log_level: unknown level %q", c.General.LogLevel))
	}
	if _, err := mdwlog.ParseFormat(c.General.LogFormat); err != nil {
		problems = append(problems, fmt.Sprintf("general.log_format: unknown format %q", c.General.LogFormat))
	}
	if c.Interpreter.MaxCallDepth < 1 {
		problems = append(problems, "interpreter.max_call_depth must be positive")
	}
	if c.Interpreter.MaxSourceBytes < 1 {
		problems = append(problems, "interpreter.max_source_bytes must be positive")
	}
	if c.Interpreter.ParseCacheSize < 1 {
		problems = append(problems, "interpreter.parse_cache_size must be positive")
	}
	if c.Interpreter.Timeout.Duration < 0 {
		problems = append(problems, "interpreter.timeout must not be negative")
	}
	if c.History.Retention.Duration <= 0 {
		problems = append(problems, "history.retention must be positive")
	}
	if !validPort(c.GRPC.Port) {
		problems = append(problems, fmt.Sprintf("grpc.port %d out of range", c.GRPC.Port))
	}
	if !validPort(c.WebSocket.Port) {
		problems = append(problems, fmt.Sprintf("websocket.port %d out of range", c.WebSocket.Port))
	}
	if !strings.HasPrefix(c.WebSocket.Path, "/") {
		problems = append(problems, "websocket.path must start with /")
	}

	if len(problems) > 0 {
		return mdwerror.New("invalid configuration: "+strings.Join(problems, "; ")).
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.Validate").
			WithDetail("source", c.source)
	}
	return nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.LogLevel == "" {
		c.General.LogLevel = "warn"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "console"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = defaultDataDir()
	}

	// Interpreter
	if c.Interpreter.MaxCallDepth == 0 {
		c.Interpreter.MaxCallDepth = 10000
	}
	if c.Interpreter.MaxSourceBytes == 0 {
		c.Interpreter.MaxSourceBytes = 1 << 20
	}
	if c.Interpreter.Timeout.Duration == 0 {
		c.Interpreter.Timeout.Duration = 10 * time.Second
	}
	if c.Interpreter.ParseCacheSize == 0 {
		c.Interpreter.ParseCacheSize = 256
	}

	// History
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.General.DataDir, "history.db")
	}
	if c.History.Retention.Duration == 0 {
		c.History.Retention.Duration = 30 * 24 * time.Hour
	}

	// gRPC
	if c.GRPC.Host == "" {
		c.GRPC.Host = "127.0.0.1"
	}
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 9400
	}

	// WebSocket
	if c.WebSocket.Host == "" {
		c.WebSocket.Host = "127.0.0.1"
	}
	if c.WebSocket.Port == 0 {
		c.WebSocket.Port = 9401
	}
	if c.WebSocket.Path == "" {
		c.WebSocket.Path = "/ws"
	}
}

// applyEnv lets FUNLANG_<SECTION>_<KEY> variables win over file values
func (c *Config) applyEnv(env *coreconfig.Config) {
	c.General.LogLevel = env.GetString("general.log_level", c.General.LogLevel)
	c.General.LogFormat = env.GetString("general.log_format", c.General.LogFormat)
	c.General.DataDir = env.GetString("general.data_dir", c.General.DataDir)

	c.Interpreter.MaxCallDepth = env.GetInt("interpreter.max_call_depth", c.Interpreter.MaxCallDepth)
	c.Interpreter.MaxSourceBytes = env.GetInt("interpreter.max_source_bytes", c.Interpreter.MaxSourceBytes)
	c.Interpreter.Timeout.Duration = env.GetDuration("interpreter.timeout", c.Interpreter.Timeout.Duration)
	c.Interpreter.ParseCacheSize = env.GetInt("interpreter.parse_cache_size", c.Interpreter.ParseCacheSize)

	if env.Has("history.enabled") {
		enabled := env.GetBool("history.enabled", c.HistoryEnabled())
		c.History.Enabled = &enabled
	}
	c.History.Path = env.GetString("history.path", c.History.Path)
	c.History.Retention.Duration = env.GetDuration("history.retention", c.History.Retention.Duration)

	c.GRPC.Host = env.GetString("grpc.host", c.GRPC.Host)
	c.GRPC.Port = env.GetInt("grpc.port", c.GRPC.Port)

	c.WebSocket.Host = env.GetString("websocket.host", c.WebSocket.Host)
	c.WebSocket.Port = env.GetInt("websocket.port", c.WebSocket.Port)
	c.WebSocket.Path = env.GetString("websocket.path", c.WebSocket.Path)
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.History.Path = os.ExpandEnv(c.History.Path)
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return "./data"
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}
