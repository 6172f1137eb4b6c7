package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration for the transcoder tool. Every
// field has a working default; a missing config file is not an error.
type Config struct {
	// CompressPath is the ojph_compress executable to invoke.
	CompressPath string `yaml:"compress_path"`

	// ExpandPath is the ojph_expand executable to invoke.
	ExpandPath string `yaml:"expand_path"`

	// Profile is the default compression profile name.
	Profile string `yaml:"profile"`

	// Strict turns precision violations into errors instead of clipping.
	Strict bool `yaml:"strict"`

	// QStep overrides the lossy quantization step; zero keeps the default.
	QStep float64 `yaml:"qstep"`

	// TempDir hosts the scratch directories for raster and codestream files.
	// Empty means the OS default.
	TempDir string `yaml:"temp_dir"`

	// LogLevel is a zerolog level name: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// MaxObjectSize caps in-memory pixel data when parsing, in bytes.
	MaxObjectSize int `yaml:"max_object_size"`
}

// defaultConfig returns the built-in configuration.
func defaultConfig() Config {
	return Config{
		CompressPath:  "ojph_compress",
		ExpandPath:    "ojph_expand",
		Profile:       "RPCL",
		LogLevel:      "info",
		MaxObjectSize: 100 * 1024 * 1024,
	}
}

// loadConfig reads the YAML config at path over the defaults. An empty path
// returns the defaults unchanged.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.CompressPath == "" {
		cfg.CompressPath = "ojph_compress"
	}
	if cfg.ExpandPath == "" {
		cfg.ExpandPath = "ojph_expand"
	}
	if cfg.Profile == "" {
		cfg.Profile = "RPCL"
	}
	if cfg.MaxObjectSize <= 0 {
		cfg.MaxObjectSize = 100 * 1024 * 1024
	}
	return cfg, nil
}
