package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cudamm/internal/accel"
	"github.com/samcharles93/cudamm/internal/api"
	"github.com/samcharles93/cudamm/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		maxOutput   int64
		bodyLimit   int64
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the matmul HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "max-output",
				Usage:       "largest m*n accepted per request",
				Value:       api.DefaultMaxOutput,
				Destination: &maxOutput,
			},
			&cli.Int64Flag{
				Name:        "body-limit",
				Usage:       "largest request body in bytes",
				Value:       api.DefaultBodyLimit,
				Destination: &bodyLimit,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			if cfg.ServerAddress != "" && !cmd.IsSet("addr") {
				addr = cfg.ServerAddress
			}
			if cfg.ReadTimeout != nil && !cmd.IsSet("read-timeout") {
				readTimeout = *cfg.ReadTimeout
			}

			caps := accel.Capabilities()
			if !caps.CUDA {
				log.Warn("serving without CUDA; only the reference kernel will succeed", "reason", caps.Reason)
			}
			server := api.NewServer(accel.Default(accel.WithLogger(log)), caps, log.WithGroup("api"),
				api.WithMaxOutput(maxOutput),
				api.WithBodyLimit(bodyLimit),
			)

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
