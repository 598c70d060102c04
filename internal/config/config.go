// Package config loads photobooth settings from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/photobooth/internal/framesource"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given; it may be absent.
const DefaultPath = "photobooth.yaml"

type Config struct {
	Server ServerConfig `yaml:"server"`
	Output OutputConfig `yaml:"output"`
	Source SourceConfig `yaml:"source"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type SourceConfig struct {
	Kind string `yaml:"kind"` // pushed, pattern, directory or http
	URL  string `yaml:"url"`
	Dir  string `yaml:"dir"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8888"},
		Output: OutputConfig{Dir: "strips"},
		Source: SourceConfig{Kind: framesource.KindPushed},
	}
}

// Load reads path over the defaults, then applies PHOTOBOOTH_* environment
// overrides. A missing file at DefaultPath is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		key    string
		target *string
	}{
		{"PHOTOBOOTH_PORT", &cfg.Server.Port},
		{"PHOTOBOOTH_OUTPUT_DIR", &cfg.Output.Dir},
		{"PHOTOBOOTH_SOURCE", &cfg.Source.Kind},
		{"PHOTOBOOTH_SOURCE_URL", &cfg.Source.URL},
		{"PHOTOBOOTH_SOURCE_DIR", &cfg.Source.Dir},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.target = v
		}
	}
}

// FrameSource converts the source section for framesource.NewOpener.
func (c Config) FrameSource() framesource.Config {
	return framesource.Config{
		Kind: c.Source.Kind,
		URL:  c.Source.URL,
		Dir:  c.Source.Dir,
	}
}
