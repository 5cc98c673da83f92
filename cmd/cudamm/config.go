package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cudamm/internal/accel"
	"github.com/samcharles93/cudamm/internal/config"
	"github.com/samcharles93/cudamm/internal/logger"
)

var cfg config.Config

// setup loads the config file and installs the logger on the context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := configFile
	if path == "" {
		path = config.Path()
	}
	loaded, err := config.Load(path)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	cfg = loaded
	applyLoggingConfig(cmd, cfg)

	level := logLevel
	if debug {
		level = "debug"
	}
	log, err := logger.ForFormat(os.Stderr, logFormat, level)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	return logger.WithContext(ctx, log), nil
}

// applyLoggingConfig fills logging flags from cfg unless set on the command line.
func applyLoggingConfig(c *cli.Command, cfg config.Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// resolveKernel applies the configured kernel default and parses the result.
func resolveKernel(c *cli.Command) (accel.KernelKind, error) {
	if cfg.Kernel != "" && !c.IsSet("kernel") {
		kernelName = cfg.Kernel
	}
	kind, err := accel.ParseKernel(kernelName)
	if err != nil {
		return "", cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	return kind, nil
}

func applyInt64(c *cli.Command, name string, v *int64, dst *int64) {
	if v != nil && !c.IsSet(name) {
		*dst = *v
	}
}

// exitError reports err as a CLI exit; an unavailable accelerator exits 2.
func exitError(action string, err error) error {
	code := 1
	if accel.IsFatal(err) {
		code = 2
	}
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		return err
	}
	return cli.Exit(fmt.Sprintf("error: %s: %v", action, err), code)
}
