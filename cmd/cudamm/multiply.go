package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cudamm/internal/accel"
	"github.com/samcharles93/cudamm/internal/logger"
	"github.com/samcharles93/cudamm/internal/matfile"
)

func multiplyCmd() *cli.Command {
	var (
		aPath, bPath string
		outPath      string
		m, k, n      int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "a",
			Usage:       "matrix A (.json or .f32)",
			Required:    true,
			Destination: &aPath,
		},
		&cli.StringFlag{
			Name:        "b",
			Usage:       "matrix B (.json or .f32)",
			Required:    true,
			Destination: &bPath,
		},
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "write C to this file instead of stdout",
			Destination: &outPath,
		},
		kernelFlag(),
	}
	flags = append(flags, dimFlags(&m, &k, &n)...)

	return &cli.Command{
		Name:  "multiply",
		Usage: "Multiply two matrices read from disk",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			kind, err := resolveKernel(cmd)
			if err != nil {
				return err
			}

			a, err := matfile.Load(aPath, int(m), int(k))
			if err != nil {
				return exitError("load A", err)
			}
			// JSON files carry their own shape; take missing dims from them.
			if m == 0 {
				m = int64(a.Rows())
			}
			if k == 0 {
				k = int64(a.Cols())
			}
			b, err := matfile.Load(bPath, int(k), int(n))
			if err != nil {
				return exitError("load B", err)
			}
			if n == 0 {
				n = int64(b.Cols())
			}

			log.Debug("multiply", "kernel", string(kind), "m", m, "k", k, "n", n)
			c, err := accel.Run(accel.Default(accel.WithLogger(log)), kind, log, a, b, int(m), int(k), int(n))
			if err != nil {
				return exitError("multiply", err)
			}

			if outPath == "" {
				if err := matfile.EncodeJSON(os.Stdout, c); err != nil {
					return exitError("write result", err)
				}
				return nil
			}
			if err := matfile.Save(outPath, c); err != nil {
				return exitError("write result", err)
			}
			log.Info("wrote result", "path", outPath, "shape", fmt.Sprint(c.Shape))
			return nil
		},
	}
}
