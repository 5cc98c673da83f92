package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cudamm/internal/accel"
	"github.com/samcharles93/cudamm/internal/logger"
	"github.com/samcharles93/cudamm/internal/tensor"
)

type benchResult struct {
	Runs    int
	Min     time.Duration
	Mean    time.Duration
	GFLOPS  float64
	MaxDiff float64
}

// runBench times runs calls of one kernel after warmup calls and compares the
// last output to the CPU reference.
func runBench(mul accel.Multiplier, kind accel.KernelKind, log logger.Logger, m, k, n, warmup, runs int, seed int64) (benchResult, error) {
	a, err := tensor.Random(m, k, seed)
	if err != nil {
		return benchResult{}, err
	}
	b, err := tensor.Random(k, n, seed+1)
	if err != nil {
		return benchResult{}, err
	}

	for range warmup {
		if _, err := accel.Run(mul, kind, log, a, b, m, k, n); err != nil {
			return benchResult{}, err
		}
	}

	var (
		total time.Duration
		best  time.Duration
		last  *tensor.Tensor
	)
	for i := range runs {
		start := time.Now()
		out, err := accel.Run(mul, kind, log, a, b, m, k, n)
		if err != nil {
			return benchResult{}, err
		}
		d := time.Since(start)
		total += d
		if i == 0 || d < best {
			best = d
		}
		last = out
	}

	res := benchResult{Runs: runs, Min: best}
	if runs > 0 {
		res.Mean = total / time.Duration(runs)
		if best > 0 {
			res.GFLOPS = 2 * float64(m) * float64(k) * float64(n) / best.Seconds() / 1e9
		}
		want, err := accel.NewReferenceLauncher(log).MatMul(a, b, m, k, n)
		if err != nil {
			return benchResult{}, err
		}
		res.MaxDiff = tensor.MaxAbsDiff(last.Data, want.Data)
	}
	return res, nil
}

func benchCmd() *cli.Command {
	var (
		m, k, n    int64
		warmupRuns int64
		benchRuns  int64
		seed       int64
	)

	flags := []cli.Flag{
		kernelFlag(),
		&cli.Int64Flag{
			Name:        "warmup",
			Usage:       "number of warmup runs",
			Value:       1,
			Destination: &warmupRuns,
		},
		&cli.Int64Flag{
			Name:        "runs",
			Usage:       "number of timed runs",
			Value:       5,
			Destination: &benchRuns,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "random seed for the operands",
			Value:       1,
			Destination: &seed,
		},
	}
	for _, f := range dimFlags(&m, &k, &n) {
		f.(*cli.Int64Flag).Value = 512
		flags = append(flags, f)
	}

	return &cli.Command{
		Name:  "bench",
		Usage: "Time a kernel on random square-ish matrices",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			kind, err := resolveKernel(cmd)
			if err != nil {
				return err
			}
			applyInt64(cmd, "runs", cfg.BenchRuns, &benchRuns)
			applyInt64(cmd, "warmup", cfg.BenchWarmup, &warmupRuns)
			applyInt64(cmd, "seed", cfg.Seed, &seed)
			if m <= 0 || k <= 0 || n <= 0 || benchRuns <= 0 || warmupRuns < 0 {
				return cli.Exit("error: dims and runs must be positive", 1)
			}

			res, err := runBench(accel.Default(), kind, log, int(m), int(k), int(n), int(warmupRuns), int(benchRuns), seed)
			if err != nil {
				return exitError("bench", err)
			}

			fmt.Println("=== cudamm bench ===")
			fmt.Printf("Kernel:   %s\n", kind)
			fmt.Printf("Shape:    %dx%d * %dx%d\n", m, k, k, n)
			fmt.Printf("CPUs:     %d\n", runtime.NumCPU())
			fmt.Printf("Runs:     %d (+%d warmup)\n", res.Runs, warmupRuns)
			fmt.Printf("Min:      %s\n", res.Min.Round(time.Microsecond))
			fmt.Printf("Mean:     %s\n", res.Mean.Round(time.Microsecond))
			fmt.Printf("GFLOP/s:  %.2f\n", res.GFLOPS)
			fmt.Printf("Max diff: %.3g (vs CPU reference)\n", res.MaxDiff)
			return nil
		},
	}
}
