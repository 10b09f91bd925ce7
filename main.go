package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	serve := serveCmd(&configPath)
	rootCmd := &cobra.Command{
		Use:          "lockin",
		Short:        "lockin - task accountability backend",
		Version:      Version,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (LOCKIN_* env vars override it)")

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(sweepCmd(&configPath))
	rootCmd.AddCommand(resetWeekCmd(&configPath))
	rootCmd.AddCommand(recomputeCmd(&configPath))

	return rootCmd
}
