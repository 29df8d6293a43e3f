package main

import (
	"context"
	"os"

	"github.com/aretw0/canvas"
	"github.com/aretw0/canvas/internal/cli"
	"github.com/aretw0/canvas/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves validation, requirements, prop source resolution and draft auto-save
over HTTP. Drafts are stored in Redis when --redis-addr is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if tui.IsTerminal(os.Stderr) {
			tui.PrintBanner(os.Stderr, canvas.Version)
		}
		hosts, _ := cmd.Flags().GetString("hosts")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		err = cli.Serve(ctx, cfg, cli.ServeOptions{HostsPath: hosts}, logger)
		if sig := ctx.Signal(); sig != nil {
			logger.Info("Stopped by signal", "signal", sig)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("hosts", "", "YAML or JSON file seeding the host entities")
}
