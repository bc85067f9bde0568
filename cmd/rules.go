package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	rulesFile   string
	rulesStrict bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the cleaning vocabulary",
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective vocabulary as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vocab, err := vocabulary(rulesFile)
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(vocab)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report species rules that are overridden by or unreachable behind other rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vocab, err := vocabulary(rulesFile)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		conflicts := vocab.SpeciesRules.Conflicts()
		if len(conflicts) == 0 {
			fmt.Fprintf(out, "✓ %d species rules, no conflicts\n", len(vocab.SpeciesRules))
			return nil
		}
		for _, c := range conflicts {
			fmt.Fprintf(out, "⚠ %s\n", c)
		}
		fmt.Fprintf(out, "%d species rules, %d conflict(s)\n", len(vocab.SpeciesRules), len(conflicts))
		if rulesStrict {
			return fmt.Errorf("%d rule conflict(s)", len(conflicts))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesCheckCmd)
	rulesCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "YAML vocabulary file (overrides rules_file)")
	rulesCheckCmd.Flags().BoolVar(&rulesStrict, "strict", false, "exit with an error when conflicts are found")
}
