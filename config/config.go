package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MaxRetriesLimit bounds loop.max_retries so the replayed history stays finite
const MaxRetriesLimit = 20

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Loop    LoopConfig    `mapstructure:"loop"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// LLMConfig holds the language model endpoint configuration
type LLMConfig struct {
	BaseURL            string  `mapstructure:"base_url"`
	APIKey             string  `mapstructure:"api_key"`
	Model              string  `mapstructure:"model"`
	CoderTemperature   float32 `mapstructure:"coder_temperature"`
	AuditorTemperature float32 `mapstructure:"auditor_temperature"`
	RequestTimeoutSec  int     `mapstructure:"request_timeout_sec"`
}

// LoopConfig holds the retry loop configuration
type LoopConfig struct {
	MaxRetries        int `mapstructure:"max_retries"`
	MaxConcurrentRuns int `mapstructure:"max_concurrent_runs"`
}

// SandboxConfig holds sandbox configuration
type SandboxConfig struct {
	Backend            string `mapstructure:"backend"`
	TimeoutSec         int    `mapstructure:"timeout_sec"`
	Interpreter        string `mapstructure:"interpreter"`
	Image              string `mapstructure:"image"`
	MemoryMB           int    `mapstructure:"memory_mb"`
	NetworkEnabled     bool   `mapstructure:"network_enabled"`
	EnableLocalBackend bool   `mapstructure:"enable_local_backend"`
	WorkspaceRoot      string `mapstructure:"workspace_root"`
	MaxOutputKB        int    `mapstructure:"max_output_kb"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// New loads and validates the application configuration
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// NEXUS_LLM_API_KEY overrides llm.api_key and so on
	v.SetEnvPrefix("NEXUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.transport", "http")
	v.SetDefault("server.http_port", 8080)

	// An Ollama instance on the same host is the reference deployment
	v.SetDefault("llm.base_url", "http://localhost:11434/v1")
	v.SetDefault("llm.api_key", "ollama")
	v.SetDefault("llm.model", "qwen2.5-coder:1.5b")
	v.SetDefault("llm.coder_temperature", 0.6)
	v.SetDefault("llm.auditor_temperature", 0.1)
	v.SetDefault("llm.request_timeout_sec", 120)

	v.SetDefault("loop.max_retries", 5)
	v.SetDefault("loop.max_concurrent_runs", 4)

	v.SetDefault("sandbox.backend", "local")
	v.SetDefault("sandbox.timeout_sec", 60)
	v.SetDefault("sandbox.interpreter", "python3")
	v.SetDefault("sandbox.image", "python:3.11-slim")
	v.SetDefault("sandbox.memory_mb", 512)
	v.SetDefault("sandbox.network_enabled", false)
	v.SetDefault("sandbox.enable_local_backend", true)
	v.SetDefault("sandbox.workspace_root", "")
	v.SetDefault("sandbox.max_output_kb", 64)

	v.SetDefault("logging.mode", "production")
	v.SetDefault("logging.level", "info")
}

// validate ensures the configuration is valid
//
//nolint:gocyclo // Flat list of independent checks
func (c *Config) validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	if c.Server.Transport == "http" && (c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535) {
		return fmt.Errorf("invalid server.http_port: %d", c.Server.HTTPPort)
	}

	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url must be set")
	}

	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model must be set")
	}

	if c.LLM.CoderTemperature < 0 || c.LLM.CoderTemperature > 2 {
		return fmt.Errorf("llm.coder_temperature must be within [0, 2], got: %v", c.LLM.CoderTemperature)
	}

	if c.LLM.AuditorTemperature < 0 || c.LLM.AuditorTemperature > 2 {
		return fmt.Errorf("llm.auditor_temperature must be within [0, 2], got: %v", c.LLM.AuditorTemperature)
	}

	if c.LLM.RequestTimeoutSec <= 0 {
		return fmt.Errorf("llm.request_timeout_sec must be positive, got: %d", c.LLM.RequestTimeoutSec)
	}

	if c.Loop.MaxRetries <= 0 || c.Loop.MaxRetries > MaxRetriesLimit {
		return fmt.Errorf("loop.max_retries must be within [1, %d], got: %d", MaxRetriesLimit, c.Loop.MaxRetries)
	}

	if c.Loop.MaxConcurrentRuns <= 0 {
		return fmt.Errorf("loop.max_concurrent_runs must be positive, got: %d", c.Loop.MaxConcurrentRuns)
	}

	if c.Sandbox.TimeoutSec <= 0 {
		return fmt.Errorf("sandbox.timeout_sec must be positive, got: %d", c.Sandbox.TimeoutSec)
	}

	if c.Sandbox.MemoryMB <= 0 {
		return fmt.Errorf("sandbox.memory_mb must be positive, got: %d", c.Sandbox.MemoryMB)
	}

	if c.Sandbox.MaxOutputKB <= 0 {
		return fmt.Errorf("sandbox.max_output_kb must be positive, got: %d", c.Sandbox.MaxOutputKB)
	}

	supportedBackends := map[string]bool{
		"docker": true,
		"podman": true,
		"local":  c.Sandbox.EnableLocalBackend, // local only enabled if specifically allowed
	}

	if !supportedBackends[c.Sandbox.Backend] {
		return fmt.Errorf("unsupported sandbox.backend: %s", c.Sandbox.Backend)
	}

	if c.Sandbox.Backend == "local" && c.Sandbox.Interpreter == "" {
		return fmt.Errorf("sandbox.interpreter must be set for the local backend")
	}

	if c.Sandbox.Backend != "local" && c.Sandbox.Image == "" {
		return fmt.Errorf("sandbox.image must be set for the %s backend", c.Sandbox.Backend)
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
		"dpanic": true, "panic": true, "fatal": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	return nil
}

// GetTimeout returns the sandbox execution timeout as a duration
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Sandbox.TimeoutSec) * time.Second
}

// GetLLMTimeout returns the per-request language model timeout as a duration
func (c *Config) GetLLMTimeout() time.Duration {
	return time.Duration(c.LLM.RequestTimeoutSec) * time.Second
}
