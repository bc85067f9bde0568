package cmd

import (
	"fmt"
	"strings"

	cfgpkg "github.com/KaramelBytes/incidentclean-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set incidentclean configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "row_min_non_null: %d\n", cfg.RowMinNonNull)
		fmt.Fprintf(out, "col_min_non_null: %d\n", cfg.ColMinNonNull)
		fmt.Fprintf(out, "missing_tokens: %q\n", cfg.MissingTokens)
		if cfg.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", cfg.SheetName)
		}
		fmt.Fprintf(out, "sheet_index: %d\n", cfg.SheetIndex)
		renames := make([]string, 0, len(cfg.ColumnRenames))
		for _, r := range cfg.ColumnRenames {
			renames = append(renames, r.From+"="+r.To)
		}
		fmt.Fprintf(out, "column_renames: %s\n", strings.Join(renames, ","))
		if cfg.RulesFile != "" {
			fmt.Fprintf(out, "rules_file: %s\n", cfg.RulesFile)
		}
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "head_rows: %d\n", cfg.HeadRows)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk. Keys: " + strings.Join(cfgpkg.Keys, ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
