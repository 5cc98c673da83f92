package main

import "github.com/urfave/cli/v3"

var (
	configFile string
	logLevel   string
	logFormat  string
	debug      bool

	kernelName string
)

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml (default: user config dir)",
			Destination: &configFile,
		},
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

func kernelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "kernel",
		Usage:       "kernel to run (custom, cublas, reference)",
		Value:       "custom",
		Destination: &kernelName,
	}
}

func dimFlags(m, k, n *int64) []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{Name: "m", Usage: "rows of A and C", Destination: m},
		&cli.Int64Flag{Name: "k", Usage: "cols of A, rows of B", Destination: k},
		&cli.Int64Flag{Name: "n", Usage: "cols of B and C", Destination: n},
	}
}
