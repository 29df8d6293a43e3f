package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/canvas"
	"github.com/aretw0/canvas/internal/cli"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <type:id>",
	Short: "Resolve the inputs of a host's component tree",
	Long:  `Evaluates the static, dynamic and adapted prop sources of every component instance in the tree of a host entity read from --hosts.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hostType, hostID, ok := strings.Cut(args[0], ":")
		if !ok || hostType == "" || hostID == "" {
			return fmt.Errorf("host must be given as type:id, got %q", args[0])
		}
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		c, err := canvas.New(cfg.ComponentsDir, canvas.WithLogger(logger))
		if err != nil {
			return err
		}
		hosts, _ := cmd.Flags().GetString("hosts")
		format, _ := cmd.Flags().GetString("output")
		return cli.RunResolve(cmd.Context(), c, cfg, cli.ResolveOptions{
			HostsPath: hosts,
			HostType:  hostType,
			HostID:    hostID,
			Format:    format,
		}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().String("hosts", "", "YAML or JSON file listing host entities")
	resolveCmd.Flags().StringP("output", "o", cli.FormatYAML, "Output format: text, json or yaml")
	_ = resolveCmd.MarkFlagRequired("hosts")
}
