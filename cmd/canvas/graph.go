package main

import (
	"github.com/aretw0/canvas"
	"github.com/aretw0/canvas/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <tree-file>",
	Short: "Export the component tree visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of a component tree. Instances with violations are highlighted unless --no-validate is set.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		selected, _ := cmd.Flags().GetString("select")
		noValidate, _ := cmd.Flags().GetBool("no-validate")

		var c *canvas.Canvas
		if !noValidate {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			c, err = canvas.New(cfg.ComponentsDir, canvas.WithLogger(logger))
			if err != nil {
				return err
			}
		}
		return cli.RunGraph(cmd.Context(), c, args[0], selected, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("select", "", "UUID of the instance to highlight")
	graphCmd.Flags().Bool("no-validate", false, "Skip validation and draw the tree only")
}
