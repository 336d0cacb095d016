// Package config loads application configuration with koanf: defaults, then
// an optional config.yaml, then DOCCHAT_ environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "DOCCHAT_"

// Config holds everything the client needs at startup.
type Config struct {
	Backend  BackendConfig `koanf:"backend"`
	Storage  StorageConfig `koanf:"storage"`
	Log      LogConfig     `koanf:"log"`
	Features FeatureConfig `koanf:"features"`
	Chat     ChatConfig    `koanf:"chat"`
}

// BackendConfig points at the chat backend.
type BackendConfig struct {
	BaseURL        string `koanf:"base_url"`
	TimeoutSeconds int    `koanf:"timeout"`
}

// StorageConfig locates the advisory local cache.
type StorageConfig struct {
	Dir string `koanf:"dir"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	File  string `koanf:"file"`
	Level string `koanf:"level"`
}

// FeatureConfig toggles optional subsystems.
type FeatureConfig struct {
	RestoreHistory bool `koanf:"restore_history"`
	HealthCheck    bool `koanf:"health_check"`
}

// ChatConfig tunes the chat controller.
type ChatConfig struct {
	TypingDelayMS int `koanf:"typing_delay_ms"`
}

// Load builds the configuration from defaults, config.yaml (when present)
// and environment variables, highest precedence last.
func Load() (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		_ = k.Set(key, value)
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := k.Load(file.Provider("config.yaml"), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config.yaml: %w", err)
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			// DOCCHAT_BACKEND_BASE_URL -> backend.base_url: only the first
			// underscore separates the section from the key.
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			return strings.Replace(key, "_", ".", 1), value
		},
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func defaults() map[string]any {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return map[string]any{
		"backend.base_url": "http://localhost:8000",
		"backend.timeout":  30,

		"storage.dir": filepath.Join(cacheDir, "docchat"),

		"log.file":  filepath.Join(cacheDir, "docchat", "docchat.log"),
		"log.level": "info",

		"features.restore_history": true,
		"features.health_check":    true,

		"chat.typing_delay_ms": 400,
	}
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Backend.BaseURL) == "" {
		return fmt.Errorf("backend base_url is required")
	}
	if cfg.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend timeout must be positive, got %d", cfg.Backend.TimeoutSeconds)
	}
	if cfg.Chat.TypingDelayMS < 0 {
		return fmt.Errorf("chat typing_delay_ms cannot be negative")
	}
	return nil
}

// RequestTimeout returns the backend timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// TypingDelay returns the chat pacing window as a duration.
func (c *Config) TypingDelay() time.Duration {
	return time.Duration(c.Chat.TypingDelayMS) * time.Millisecond
}
