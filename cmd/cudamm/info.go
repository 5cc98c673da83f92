package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cudamm/internal/accel"
	"github.com/samcharles93/cudamm/internal/version"
)

func infoCmd() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Report accelerator support in this build",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			caps := accel.Capabilities()
			fmt.Printf("version:  %s\n", version.String())
			fmt.Printf("platform: %s\n", caps.Platform)
			fmt.Printf("cuda:     %t\n", caps.CUDA)
			if !caps.CUDA {
				fmt.Printf("reason:   %s\n", caps.Reason)
				return nil
			}
			count, err := accel.Devices()
			if err != nil {
				return exitError("query devices", err)
			}
			fmt.Printf("devices:  %d\n", count)
			return nil
		},
	}
}
