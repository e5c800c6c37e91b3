// pattern: Imperative Shell

package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const appName = "aaosbuild"

type Config struct {
	Theme    string `yaml:"theme"`
	LogLevel string `yaml:"log_level"`
	// LogFile enables a rotated JSON log in addition to stderr.
	LogFile string `yaml:"log_file"`
	// Entry selects the root resolution entry point; empty means the manifest's own.
	Entry string `yaml:"entry"`
	// Manifest is a built-in manifest name, a name under the manifests
	// directory, or a path to a YAML file.
	Manifest string `yaml:"manifest"`
}

func DefaultConfig() Config {
	return Config{
		Theme:    "mocha",
		LogLevel: "warn",
	}
}

// Load reads the config from the default location.
func Load() (Config, error) {
	return LoadFrom(getConfigPath())
}

// LoadFromDir reads config.yaml from dir.
func LoadFromDir(dir string) (Config, error) {
	return LoadFrom(filepath.Join(dir, "config.yaml"))
}

// LoadFrom reads the config at configPath. A missing file yields defaults.
func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}

	if cfg.Theme == "" {
		cfg.Theme = "mocha"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}

	return cfg, nil
}

// ResolvePath expands a leading ~ to the user's home directory.
func (c *Config) ResolvePath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// ResolveDir returns the config directory, honouring an explicit override.
func ResolveDir(configDir string) string {
	if configDir != "" {
		return configDir
	}
	return filepath.Dir(getConfigPath())
}

func getConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName, "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appName, "config.yaml")
	}

	return filepath.Join(home, ".config", appName, "config.yaml")
}
