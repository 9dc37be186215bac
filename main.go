package main

import (
	"os"

	"adops/experiments"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var verbose bool
	root := &cobra.Command{
		Use:   "adops",
		Short: "Anytime POMDP planning benchmarks",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	var configPath string
	run := &cobra.Command{
		Use:   "run",
		Short: "Run the scenarios from a YAML config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := experiments.LoadConfig(configPath)
			if err != nil {
				return err
			}
			return experiments.Run(cfg)
		},
	}
	run.Flags().StringVarP(&configPath, "config", "c", "experiments.yaml", "scenario config file")

	bench := &cobra.Command{
		Use:   "bench",
		Short: "Run the built-in benchmark scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			return experiments.Run(experiments.DefaultConfig())
		},
	}

	root.AddCommand(run, bench)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
