package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/banshee-data/kartqa/internal/config"
	"github.com/banshee-data/kartqa/internal/monitoring"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// errUsage signals that usage was already printed.
var errUsage = errors.New("usage")

// commonFlags are accepted by every command that reads configuration.
type commonFlags struct {
	configPath string
	envFile    string
	logLevel   string
	logFile    string
	noColor    bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "Dataset configuration file (.json)")
	fs.StringVar(&f.envFile, "env-file", ".env", "dotenv file with KARTQA_* overrides")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFile, "log-file", "", "Also write logs to this rotating file")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable coloured output")
}

// setup loads the environment and configuration and installs the logger.
// Precedence: defaults, then the config file, then KARTQA_* variables.
func (c *cli) setup(f *commonFlags) (config.Params, *logrus.Logger, error) {
	if f.noColor {
		color.NoColor = true
	}

	logger, err := monitoring.NewLogger(monitoring.LoggerOptions{
		Level:   f.logLevel,
		File:    f.logFile,
		NoColor: color.NoColor,
		Console: c.stderr,
	})
	if err != nil {
		return config.Params{}, nil, err
	}
	monitoring.Install(logger)

	if f.envFile != "" {
		if err := config.LoadEnvFile(f.envFile); err != nil {
			return config.Params{}, nil, err
		}
	}

	cfg := config.EmptyDatasetConfig()
	if f.configPath != "" {
		cfg, err = config.LoadDatasetConfig(f.configPath)
		if err != nil {
			return config.Params{}, nil, err
		}
		logger.WithField("path", f.configPath).Debug("loaded dataset config")
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return config.Params{}, nil, fmt.Errorf("invalid environment override: %w", err)
	}

	return cfg.Resolve(), logger, nil
}

// parse parses args. The flag set has already reported any error.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

// requireFlag reports a missing mandatory flag.
func requireFlag(fs *flag.FlagSet, name, value string) error {
	if value == "" {
		fmt.Fprintf(fs.Output(), "Error: -%s is required\n", name)
		fs.Usage()
		return errUsage
	}
	return nil
}
