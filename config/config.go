// Package config loads agent configuration from a YAML file and the
// environment. Environment overrides use the SKILLMESH_ prefix with dots
// replaced by underscores, e.g. SKILLMESH_STORAGE_BACKEND=sqlite.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Storage backends supported by the agent.
const (
	BackendYAML   = "yaml"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds the full agent configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Context ContextConfig `mapstructure:"context"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
	Model   ModelConfig   `mapstructure:"model"`
}

// StorageConfig selects and locates the key-value backend.
type StorageConfig struct {
	// Backend is one of yaml, json, sqlite or memory.
	Backend string `mapstructure:"backend"`
	// Path is the storage location: a directory for yaml, a file for json
	// and sqlite. Ignored by the memory backend.
	Path string `mapstructure:"path"`
}

// ContextConfig bounds session history.
type ContextConfig struct {
	MaxHistory    int `mapstructure:"max_history"`
	ContextWindow int `mapstructure:"context_window"`
}

// EngineConfig bounds task execution.
type EngineConfig struct {
	MaxConcurrentTasks int `mapstructure:"max_concurrent_tasks"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// ModelConfig selects the chat model provider.
type ModelConfig struct {
	Provider string `mapstructure:"provider"` // "anthropic", "openai" or "mock"
	Name     string `mapstructure:"name"`
}

// Load reads configuration. Resolution order: explicit path argument,
// SKILLMESH_CONFIG, ./skillmesh.yaml, then $HOME/.config/skillmesh/. A
// missing config file is not an error; defaults and env apply.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("storage.backend", BackendYAML)
	v.SetDefault("storage.path", defaultStoragePath())
	v.SetDefault("context.max_history", 100)
	v.SetDefault("context.context_window", 10)
	v.SetDefault("engine.max_concurrent_tasks", 5)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("model.provider", "anthropic")
	v.SetDefault("model.name", "")

	v.SetConfigType("yaml")
	if path == "" {
		path = os.Getenv("SKILLMESH_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "skillmesh"))
		v.SetConfigName("skillmesh")
	}

	v.SetEnvPrefix("SKILLMESH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.Storage.Backend {
	case BackendYAML, BackendJSON, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Context.MaxHistory <= 0 {
		return fmt.Errorf("context.max_history must be positive, got %d", c.Context.MaxHistory)
	}
	if c.Context.ContextWindow <= 0 {
		return fmt.Errorf("context.context_window must be positive, got %d", c.Context.ContextWindow)
	}
	if c.Engine.MaxConcurrentTasks <= 0 {
		return fmt.Errorf("engine.max_concurrent_tasks must be positive, got %d", c.Engine.MaxConcurrentTasks)
	}
	return nil
}

func defaultStoragePath() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "skillmesh")
}
