// Package config loads the JSON settings file. A missing or broken file
// degrades to defaults; the app keeps running either way.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

const DefaultPath = "dengar.json"

const (
	DefaultLanguage = "id-ID"
	DefaultModel    = "qwen3:8b"
)

type Config struct {
	DefaultLanguage string   `json:"default_language"`
	Model           string   `json:"model"`
	SystemPrompt    string   `json:"system_prompt"`
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxTokens       *int     `json:"max_tokens,omitempty"`
}

func Defaults() Config {
	return Config{
		DefaultLanguage: DefaultLanguage,
		Model:           DefaultModel,
	}
}

// Load reads path and fills unset fields from the defaults. When the
// file is missing or unparseable it returns the defaults alongside the
// error so callers can report and continue.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = DefaultLanguage
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return cfg, nil
}

// Save writes the config as indented JSON.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
