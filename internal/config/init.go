package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// defaultFile mirrors SetDefaults; kept as plain maps so the generated file
// carries only the values a user is likely to touch.
var defaultFile = map[string]any{
	"logging": map[string]any{
		"level":   "info",
		"profile": "cli",
	},
	"reddit": map[string]any{
		"delay":   "3s",
		"timeout": "30s",
	},
	"llm": map[string]any{
		"enabled": true,
		"model":   "gpt-4o-mini",
		"api_key": "",
	},
	"scout": map[string]any{
		"budget":          "360s",
		"limit":           20,
		"max_discovery":   30,
		"niche_threshold": 1000,
	},
	"store": map[string]any{
		"enabled": false,
		"path":    "",
	},
	"server": map[string]any{
		"host": "localhost",
		"port": 8080,
	},
}

// WriteDefault writes a starter config file at path, refusing to overwrite
// an existing one.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(defaultFile)
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// DefaultPath returns the user config file location.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "threadlens.yaml"
	}
	return filepath.Join(base, "threadlens", "config.yaml")
}
