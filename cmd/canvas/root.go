package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/canvas/internal/cli"
	"github.com/aretw0/canvas/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "canvas",
	Short: "Canvas validates and resolves component trees",
	Long: `Canvas checks component trees against a library of component definitions:
structure, slots, inputs and prop sources. It can also serve the checks over
HTTP or as Model Context Protocol tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./canvas.yaml if present)")
	config.RegisterFlags(rootCmd.PersistentFlags())
}

// setup loads the configuration and logger for cmd.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, used, err := config.Load(config.LoadOptions{ConfigFile: file, Flags: cmd.Flags()})
	if err != nil {
		return nil, nil, err
	}
	logger, err := cli.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	if used != "" {
		logger.Debug("Loaded config file", "path", used)
	}
	return cfg, logger, nil
}

// exitError marks a run that completed but found problems.
type exitError struct{ msg string }

func (e exitError) Error() string { return e.msg }
