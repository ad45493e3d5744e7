package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/tiler/internal/tiling"
)

// Config represents the tiler configuration file (~/.config/tiler/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	// Target platform
	Platform      string `yaml:"platform"`
	PlatformsFile string `yaml:"platforms_file"`
	Units         *int64 `yaml:"units"`
	BufferBytes   *int64 `yaml:"buffer_bytes"`

	// Planner
	ReservedBytes *int64 `yaml:"reserved_bytes"`
	MaxUnits      *int64 `yaml:"max_units"`
	Buffering     *int64 `yaml:"buffering"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tiler", "config.yaml")
}

// LoadConfig reads the config file at path. A missing file yields a zero
// Config; a malformed one is an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// applyGlobalConfig applies config file defaults to the global flag
// variables when the corresponding flag was not explicitly set.
func applyGlobalConfig(c *cli.Command, cfg Config) {
	if cfg.Platform != "" && !c.IsSet("platform") {
		platformName = cfg.Platform
	}
	if cfg.PlatformsFile != "" && !c.IsSet("platforms-file") {
		platformsFile = cfg.PlatformsFile
	}
	if cfg.Units != nil && !c.IsSet("units") {
		units = *cfg.Units
	}
	if cfg.BufferBytes != nil && !c.IsSet("buffer-bytes") {
		bufferBytes = *cfg.BufferBytes
	}
	if cfg.ReservedBytes != nil && !c.IsSet("reserved-bytes") {
		reservedBytes = *cfg.ReservedBytes
	}
	if cfg.MaxUnits != nil && !c.IsSet("max-units") {
		maxUnits = *cfg.MaxUnits
	}
	if cfg.Buffering != nil && !c.IsSet("buffering") {
		buffering = *cfg.Buffering
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}

// plannerConfig builds the planner configuration from the global flags.
func plannerConfig() tiling.Config {
	cfg := tiling.DefaultConfig()
	cfg.ReservedBytes = reservedBytes
	if maxUnits > 0 {
		cfg.MaxUnits = int(maxUnits)
	}
	if buffering > 0 {
		cfg.DefaultBuffering = int(buffering)
	}
	return cfg
}
