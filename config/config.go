// Package config loads and hot-reloads the parser's runtime knobs
// (§6 environment variables) from a YAML file, environment, or
// defaults, using viper for precedence and fsnotify for reload.
package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// Config is the resolved set of §6 environment knobs.
type Config struct {
	OCRDPI       int    `mapstructure:"ocr_dpi"`
	OCRLanguages string `mapstructure:"ocr_languages"`
	OCRGPU       bool   `mapstructure:"ocr_gpu"`

	SectionDBPath string `mapstructure:"section_db_path"`

	EmbeddingsEnabled     bool    `mapstructure:"embeddings_enabled"`
	EmbeddingSimThreshold float64 `mapstructure:"embedding_similarity_threshold"`

	HeaderScoreThresholdOverride float64 `mapstructure:"header_score_threshold_override"`
}

// DefaultConfig returns the §6-documented defaults.
func DefaultConfig() Config {
	return Config{
		OCRDPI:                       300,
		OCRLanguages:                 "en",
		OCRGPU:                       false,
		SectionDBPath:                "config/sections_database.json",
		EmbeddingsEnabled:            false,
		EmbeddingSimThreshold:        0.68,
		HeaderScoreThresholdOverride: 0,
	}
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a config manager and loads the initial config
// from cfgFile (if non-empty), RESUME_-prefixed environment variables,
// and defaults, in viper's usual precedence order.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("ocr_dpi", defaults.OCRDPI)
	viper.SetDefault("ocr_languages", defaults.OCRLanguages)
	viper.SetDefault("ocr_gpu", defaults.OCRGPU)
	viper.SetDefault("section_db_path", defaults.SectionDBPath)
	viper.SetDefault("embeddings_enabled", defaults.EmbeddingsEnabled)
	viper.SetDefault("embedding_similarity_threshold", defaults.EmbeddingSimThreshold)
	viper.SetDefault("header_score_threshold_override", defaults.HeaderScoreThresholdOverride)

	viper.SetEnvPrefix("RESUME")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	return nil
}

func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration.
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback invoked after a successful hot-reload.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading; a changed config file is
// re-parsed and callbacks are notified, but a bad file leaves the
// previous config in place.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// WriteDefault writes the default configuration to path, for use as a
// starting point by an operator.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
