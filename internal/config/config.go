package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "45s" parse.
type Duration time.Duration

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

type Config struct {
	ServerURL      string   `yaml:"server_url"`
	DataDir        string   `yaml:"data_dir"`
	RequestTimeout Duration `yaml:"request_timeout"`
	Polling        struct {
		LoadedHubs Duration `yaml:"loaded_hubs"`
		Health     Duration `yaml:"health"`
	} `yaml:"polling"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

func DefaultConfig() Config {
	cfg := Config{}
	cfg.ServerURL = "http://localhost:8000"
	cfg.DataDir = defaultDataDir()
	cfg.RequestTimeout = Duration(120 * time.Second)
	cfg.Polling.LoadedHubs = Duration(30 * time.Second)
	cfg.Polling.Health = Duration(60 * time.Second)
	cfg.Logging.Level = "info"
	return cfg
}

// Load reads a YAML config file over the defaults. A missing file is not
// an error; absent fields keep their default values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hubchat"
	}
	return filepath.Join(home, ".hubchat")
}
