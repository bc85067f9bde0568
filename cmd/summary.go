package cmd

import (
	"fmt"

	"github.com/KaramelBytes/incidentclean-cli/internal/clean"
	"github.com/KaramelBytes/incidentclean-cli/internal/dataset"
	"github.com/KaramelBytes/incidentclean-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	sumRules string
	sumJSON  bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary <file>",
	Short: "Count fatal/survived incidents and female/male victims in a cleaned file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vocab, err := vocabulary(sumRules)
		if err != nil {
			return err
		}
		ds, err := dataset.Load(args[0], cfg.ReadOptions())
		if err != nil {
			return err
		}
		f, err := clean.FatalitySummary(ds, vocab.Columns.Fatal)
		if err != nil {
			return err
		}
		g, err := clean.GenderSummary(ds, vocab.Columns.Sex)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if sumJSON {
			b, err := utils.PrettyJSON(struct {
				Fatality clean.Fatality `json:"fatality"`
				Gender   clean.Gender   `json:"gender"`
			}{f, g})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintln(out, f)
		fmt.Fprintln(out, g)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVar(&sumRules, "rules", "", "YAML vocabulary file naming the columns (overrides rules_file)")
	summaryCmd.Flags().BoolVar(&sumJSON, "json", false, "emit counts as JSON")
}
