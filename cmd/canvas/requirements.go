package main

import (
	"github.com/aretw0/canvas"
	"github.com/aretw0/canvas/internal/cli"
	"github.com/spf13/cobra"
)

var requirementsCmd = &cobra.Command{
	Use:   "requirements [component-id...]",
	Short: "Check that components can be used in the editor",
	Long:  `Checks the active version of each component (all components when none is given) for props that cannot be stored or edited.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		c, err := canvas.New(cfg.ComponentsDir, canvas.WithLogger(logger))
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("output")
		ok, err := cli.RunRequirements(cmd.Context(), c, args, format, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if !ok {
			return exitError{"some components do not meet the requirements"}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(requirementsCmd)
	requirementsCmd.Flags().StringP("output", "o", cli.FormatText, "Output format: text, json or yaml")
}
