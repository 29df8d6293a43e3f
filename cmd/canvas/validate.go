package main

import (
	"github.com/aretw0/canvas"
	"github.com/aretw0/canvas/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <tree-file>",
	Short: "Validate a component tree",
	Long: `Validates a YAML or JSON component tree against the component library:
unique UUIDs, parents and slots, required inputs and prop schemas.
Use "-" to read the tree from stdin.`,
	Args: cobra.ExactArgs(1),
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
		valid, err := cli.RunValidate(cmd.Context(), c, args[0], format, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if !valid {
			return exitError{"component tree is invalid"}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("output", "o", cli.FormatText, "Output format: text, json or yaml")
}
