// Package config loads and saves the Taskmind YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taskmindbot/taskmind/internal/logging"
	"github.com/taskmindbot/taskmind/internal/reminders"
)

// Config represents the main configuration
type Config struct {
	Version   string           `yaml:"version"`
	Telegram  *TelegramConfig  `yaml:"telegram"`
	Data      *DataConfig      `yaml:"data"`
	Logging   *logging.Config  `yaml:"logging"`
	Reminders reminders.Config `yaml:"reminders"`
	LLM       *LLMConfig       `yaml:"llm"`
}

// TelegramConfig holds the bot transport settings
type TelegramConfig struct {
	// Token is the bot API token from @BotFather.
	Token string `yaml:"token"`
	// AllowedChat restricts the bot to one chat ID. Zero allows all chats.
	AllowedChat int64 `yaml:"allowed_chat"`
	// PlainText disables MarkdownV2 formatting.
	PlainText bool `yaml:"plain_text"`
}

// DataConfig holds storage settings
type DataConfig struct {
	Path string `yaml:"path"`
}

// LLMConfig holds the optional LLM intent-fallback settings
type LLMConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Version: "1.0",
		Telegram: &TelegramConfig{
			PlainText: true,
		},
		Data: &DataConfig{
			Path: filepath.Join(homeDir, ".taskmind", "data"),
		},
		Logging: &logging.Config{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Reminders: reminders.DefaultConfig(),
		LLM:       &LLMConfig{},
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Return defaults if no config file
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Data != nil {
		config.Data.Path = expandPath(config.Data.Path)
	}

	return config, nil
}

// Save saves configuration to a file
func Save(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default configuration path
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".taskmind", "config.yaml")
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram == nil || c.Telegram.Token == "" {
		return fmt.Errorf("telegram bot token is required")
	}
	if c.Data == nil || c.Data.Path == "" {
		return fmt.Errorf("data path is required")
	}
	return nil
}
