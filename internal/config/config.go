// Package config loads taskline settings from YAML files and the environment.
//
// Precedence, highest first: TASKLINE_* environment variables, the project
// file ./.taskline/config.yaml, the global file ~/.taskline/config.yaml, then
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

const (
	dirName   = ".taskline"
	fileName  = "config.yaml"
	envPrefix = "TASKLINE"
)

type Config struct {
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
}

type StoreConfig struct {
	// Backend is csv, sqlite or memory.
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Path is the data file. Empty means the backend's default under ~/.taskline.
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

type HistoryConfig struct {
	PurgeOnDelete bool `mapstructure:"purge_on_delete" yaml:"purge_on_delete"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store:   StoreConfig{Backend: BackendCSV},
		History: HistoryConfig{PurgeOnDelete: true},
	}
}

// Validate checks the backend name.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendCSV, BackendSQLite, BackendMemory:
		return nil
	}
	return fmt.Errorf("unknown store backend %q (want %s, %s or %s)", c.Store.Backend, BackendCSV, BackendSQLite, BackendMemory)
}

// DataPath returns the configured path, or the backend's default file.
func (c *Config) DataPath() (string, error) {
	if c.Store.Path != "" {
		return expandHome(c.Store.Path)
	}
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	if c.Store.Backend == BackendSQLite {
		return filepath.Join(dir, "tasks.db"), nil
	}
	return filepath.Join(dir, "tasks.csv"), nil
}

// GlobalDir returns ~/.taskline.
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// ProjectPath returns the path to the project config file under dir.
func ProjectPath(dir string) string {
	return filepath.Join(dir, dirName, fileName)
}

// Load merges defaults, the global file, the project file in cwd and the
// environment. Missing files are skipped.
func Load(cwd string) (*Config, error) {
	var paths []string
	if global, err := GlobalPath(); err == nil {
		paths = append(paths, global)
	}
	if cwd != "" {
		paths = append(paths, ProjectPath(cwd))
	}
	return LoadFiles(paths...)
}

// LoadFiles merges the given files in order over the defaults, then applies
// the environment.
func LoadFiles(paths ...string) (*Config, error) {
	def := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("store.backend", def.Store.Backend)
	v.SetDefault("store.path", def.Store.Path)
	v.SetDefault("history.purge_on_delete", def.History.PurgeOnDelete)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, path := range paths {
		if err := mergeFile(v, path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFile(v *viper.Viper, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	if err := v.MergeConfig(f); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// WriteDefault writes the built-in configuration to path as YAML. It refuses
// to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	body, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	content := "# taskline configuration\n# store.backend: csv, sqlite or memory\n" + string(body)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
