// File: config.go
// Title: Core Configuration Management Implementation
// Description: Loads TOML or YAML configuration into a key/value tree with
//              dotted-key getters and environment overrides, and decodes
//              files into typed structs.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with TOML/YAML support
// - 2026-10-18 v0.2.0: DecodeFile, strict YAML decoding, simplified caching

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
)

// Format represents the configuration file format
type Format int

const (
	// FormatTOML represents TOML format (default)
	FormatTOML Format = iota

	// FormatYAML represents YAML format
	FormatYAML

	// FormatAuto detects the format from the file extension
	FormatAuto
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// Config is a loaded configuration tree with thread-safe access
type Config struct {
	mu        sync.RWMutex
	data      map[string]interface{}
	filePath  string
	format    Format
	envPrefix string
}

// LoadOptions defines options for loading configuration
type LoadOptions struct {
	Format    Format                 // File format (default: auto-detect)
	EnvPrefix string                 // Environment variable prefix, e.g. "FUNLANG"
	Defaults  map[string]interface{} // Top-level defaults
}

// Load loads configuration from a file with default options
func Load(filePath string) (*Config, error) {
	return LoadWithOptions(filePath, LoadOptions{Format: FormatAuto})
}

// LoadWithOptions loads configuration from a file with custom options
func LoadWithOptions(filePath string, options LoadOptions) (*Config, error) {
	content, format, err := readFile(filePath, options.Format, "config.LoadWithOptions")
	if err != nil {
		return nil, err
	}

	data, err := parseContent(content, format)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config file").
			WithOperation("config.LoadWithOptions").
			WithDetail("filePath", filePath).
			WithDetail("format", format.String())
	}

	if options.Defaults != nil {
		data = mergeDefaults(data, options.Defaults)
	}

	return &Config{
		data:      data,
		filePath:  filePath,
		format:    format,
		envPrefix: options.EnvPrefix,
	}, nil
}

// LoadFromString loads configuration from a string with specified format
func LoadFromString(content string, format Format) (*Config, error) {
	if format == FormatAuto {
		format = FormatTOML
	}

	data, err := parseContent([]byte(content), format)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config from string").
			WithOperation("config.LoadFromString").
			WithDetail("format", format.String())
	}
	return &Config{data: data, format: format}, nil
}

// FromEnv returns an empty configuration that answers only from
// environment variables named PREFIX_SECTION_KEY
func FromEnv(prefix string) *Config {
	return &Config{data: make(map[string]interface{}), envPrefix: prefix}
}

// DecodeFile decodes a TOML or YAML file into target. YAML documents are
// decoded strictly: unknown keys are an error.
func DecodeFile(filePath string, target interface{}) error {
	content, format, err := readFile(filePath, FormatAuto, "config.DecodeFile")
	if err != nil {
		return err
	}

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
			return mdwerror.Wrap(err, "YAML decode error").
				WithCode(mdwerror.CodeInvalidConfig).
				WithOperation("config.DecodeFile").
				WithDetail("filePath", filePath)
		}
	default:
		md, err := toml.Decode(string(content), target)
		if err != nil {
			return mdwerror.Wrap(err, "TOML decode error").
				WithCode(mdwerror.CodeInvalidConfig).
				WithOperation("config.DecodeFile").
				WithDetail("filePath", filePath)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return mdwerror.Newf("unknown configuration key %q", undecoded[0].String()).
				WithCode(mdwerror.CodeInvalidConfig).
				WithOperation("config.DecodeFile").
				WithDetail("filePath", filePath)
		}
	}
	return nil
}

func readFile(filePath string, format Format, op string) ([]byte, Format, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, format, mdwerror.New("config file path cannot be empty").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation(op)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		code := mdwerror.CodeConfigError
		if os.IsNotExist(err) {
			code = mdwerror.CodeNotFound
		}
		return nil, format, mdwerror.Wrap(err, "failed to read config file").
			WithCode(code).
			WithOperation(op).
			WithDetail("filePath", filePath)
	}

	if format == FormatAuto {
		format = detectFormat(filePath)
	}
	return content, format, nil
}

// detectFormat determines the configuration format from file extension
func detectFormat(filePath string) Format {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

func parseContent(content []byte, format Format) (map[string]interface{}, error) {
	data := make(map[string]interface{})

	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(content, &data); err != nil {
			return nil, mdwerror.Wrap(err, "TOML parse error").
				WithCode(mdwerror.CodeInvalidConfig).
				WithOperation("config.parseContent")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(content, &data); err != nil {
			return nil, mdwerror.Wrap(err, "YAML parse error").
				WithCode(mdwerror.CodeInvalidConfig).
				WithOperation("config.parseContent")
		}
	default:
		return nil, mdwerror.Newf("unsupported format: %s", format).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("config.parseContent")
	}
	return data, nil
}

func mergeDefaults(data, defaults map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(defaults)+len(data))
	for k, v := range defaults {
		result[k] = v
	}
	for k, v := range data {
		result[k] = v
	}
	return result
}

// GetString returns a string configuration value with optional default
func (c *Config) GetString(key string, defaultValue ...string) string {
	if env := c.getEnvValue(key); env != "" {
		return env
	}

	switch v := c.getValue(key).(type) {
	case nil:
		if len(defaultValue) > 0 {
			return defaultValue[0]
		}
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// GetInt returns an integer configuration value with optional default
func (c *Config) GetInt(key string, defaultValue ...int) int {
	if env := c.getEnvValue(key); env != "" {
		if i, err := strconv.Atoi(env); err == nil {
			return i
		}
	}

	switch v := c.getValue(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// GetBool returns a boolean configuration value with optional default
func (c *Config) GetBool(key string, defaultValue ...bool) bool {
	if env := c.getEnvValue(key); env != "" {
		if b, err := strconv.ParseBool(env); err == nil {
			return b
		}
	}

	switch v := c.getValue(key).(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// GetDuration returns a duration configuration value with optional default
func (c *Config) GetDuration(key string, defaultValue ...time.Duration) time.Duration {
	if env := c.getEnvValue(key); env != "" {
		if d, err := time.ParseDuration(env); err == nil {
			return d
		}
	}

	switch v := c.getValue(key).(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case int64:
		return time.Duration(v) * time.Second
	case int:
		return time.Duration(v) * time.Second
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// Has reports whether key is present in the file or the environment
func (c *Config) Has(key string) bool {
	return c.getValue(key) != nil || c.getEnvValue(key) != ""
}

// Set stores a value under a dotted key, creating intermediate tables
func (c *Config) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	parts := strings.Split(key, ".")
	current := c.data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// FilePath returns the path the configuration was loaded from
func (c *Config) FilePath() string { return c.filePath }

// Format returns the format of the loaded configuration
func (c *Config) Format() Format { return c.format }

func (c *Config) getValue(key string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var current interface{} = c.data
	for _, part := range strings.Split(key, ".") {
		table, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = table[part]
		if !ok {
			return nil
		}
	}
	return current
}

// getEnvValue looks up PREFIX_SECTION_KEY for a dotted key
func (c *Config) getEnvValue(key string) string {
	if c.envPrefix == "" {
		return ""
	}
	name := c.envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	return os.Getenv(name)
}
