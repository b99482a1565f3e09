package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// UserConfig represents user preferences stored in ~/.remoteminer/config.json
type UserConfig struct {
	// Default base used when a command is run without --base
	DefaultBase string `json:"default_base,omitempty"`
}

// UserConfigHandler manages loading and saving user configuration
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler creates a handler for ~/.remoteminer/config.json
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(homeDir, ".remoteminer"))
}

// NewUserConfigHandlerAt creates a handler for config.json inside dir
func NewUserConfigHandlerAt(dir string) (*UserConfigHandler, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	return &UserConfigHandler{
		configPath: filepath.Join(dir, "config.json"),
	}, nil
}

// Load reads the user config from disk
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	// If file doesn't exist, return empty config
	if _, err := os.Stat(h.configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(h.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var config UserConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}

	return &config, nil
}

// Save writes the user config to disk
func (h *UserConfigHandler) Save(config *UserConfig) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(h.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}

	return nil
}

// SetDefaultBase sets the default base
func (h *UserConfigHandler) SetDefaultBase(base string) error {
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.DefaultBase = base
	return h.Save(config)
}

// ClearDefaultBase removes the default base setting
func (h *UserConfigHandler) ClearDefaultBase() error {
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.DefaultBase = ""
	return h.Save(config)
}

// GetConfigPath returns the path to the user config file
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}
