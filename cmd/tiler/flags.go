package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tiler/internal/logger"
	"github.com/samcharles93/tiler/internal/platform"
	"github.com/samcharles93/tiler/internal/tiling"
)

var (
	configFile    string
	platformName  string
	platformsFile string
	units         int64
	bufferBytes   int64
	reservedBytes int64
	maxUnits      int64
	buffering     int64
	logLevel      string
	logFormat     string
	debug         bool

	// loadedConfig is the config file read by setup.
	loadedConfig Config
)

func globalFlags() []cli.Flag {
	return append(targetFlags(), loggingFlags()...)
}

func targetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Value:       configPath(),
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "platform",
			Aliases:     []string{"p"},
			Usage:       "platform profile (see 'tiler platforms')",
			Value:       "host",
			Destination: &platformName,
		},
		&cli.StringFlag{
			Name:        "platforms-file",
			Usage:       "YAML file with extra platform profiles",
			Destination: &platformsFile,
		},
		&cli.Int64Flag{
			Name:        "units",
			Usage:       "override the platform's unit count",
			Destination: &units,
		},
		&cli.Int64Flag{
			Name:        "buffer-bytes",
			Usage:       "override the platform's staging buffer size",
			Destination: &bufferBytes,
		},
		&cli.Int64Flag{
			Name:        "reserved-bytes",
			Usage:       "bytes of each buffer held back from tiling",
			Value:       tiling.DefaultReservedBytes,
			Destination: &reservedBytes,
		},
		&cli.Int64Flag{
			Name:        "max-units",
			Usage:       "upper bound on units per plan",
			Value:       tiling.DefaultMaxUnits,
			Destination: &maxUnits,
		},
		&cli.Int64Flag{
			Name:        "buffering",
			Usage:       "default multi-buffering factor",
			Value:       tiling.DefaultBufferingRate,
			Destination: &buffering,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// setup merges the config file into the global flags and installs the
// logger on the context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return ctx, err
	}
	loadedConfig = cfg
	applyGlobalConfig(cmd, cfg)

	level := logLevel
	if debug {
		level = "debug"
	}
	log, err := logger.Open(os.Stderr, logFormat, level)
	if err != nil {
		return ctx, err
	}
	return logger.WithContext(ctx, log), nil
}

// resolvePlatform returns the selected profile with flag overrides applied.
func resolvePlatform() (platform.Info, *platform.Registry, error) {
	reg := platform.NewRegistry()
	if platformsFile != "" {
		if err := reg.LoadFile(platformsFile); err != nil {
			return platform.Info{}, nil, err
		}
	}
	info, err := reg.Lookup(platformName)
	if err != nil {
		return platform.Info{}, nil, err
	}
	return info.Override(int(units), bufferBytes), reg, nil
}
