package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/incidentclean-cli/internal/analysis"
	"github.com/KaramelBytes/incidentclean-cli/internal/dataset"
	"github.com/KaramelBytes/incidentclean-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	insOutputPath string
	insHeadRows   int
	insTopValues  int
	insOutliers   bool
	insOutlierThr float64
	insSheetName  string
	insSheetIndex int
	insJSON       bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarize a dataset: schema, null check, duplicate check and head rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		ropt := cfg.ReadOptions()
		if insSheetName != "" {
			ropt.SheetName = insSheetName
		}
		if cmd.Flags().Changed("sheet-index") {
			ropt.SheetIndex = insSheetIndex
		}
		ds, err := dataset.Load(path, ropt)
		if err != nil {
			return err
		}

		opt := analysis.DefaultOptions()
		opt.HeadRows = cfg.HeadRows
		if cmd.Flags().Changed("head") {
			opt.HeadRows = insHeadRows
		}
		if insTopValues > 0 {
			opt.TopValues = insTopValues
		}
		opt.Outliers = insOutliers
		if insOutlierThr > 0 {
			opt.OutlierThreshold = insOutlierThr
		}
		rep := analysis.Overview(ds, filepath.Base(path), opt)

		var out []byte
		if insJSON {
			out, err = utils.PrettyJSON(rep)
			if err != nil {
				return err
			}
		} else {
			out = []byte(rep.Markdown())
		}
		if insOutputPath != "" {
			if err := utils.SafeWriteFile(insOutputPath, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Overview written to %s\n", insOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&insOutputPath, "output", "o", "", "write the overview to a file instead of stdout")
	inspectCmd.Flags().IntVar(&insHeadRows, "head", 10, "number of head rows to include (overrides head_rows)")
	inspectCmd.Flags().IntVar(&insTopValues, "top", 8, "top values listed per categorical column")
	inspectCmd.Flags().BoolVar(&insOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	inspectCmd.Flags().Float64Var(&insOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	inspectCmd.Flags().StringVar(&insSheetName, "sheet-name", "", "XLSX: sheet name to read")
	inspectCmd.Flags().IntVar(&insSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	inspectCmd.Flags().BoolVar(&insJSON, "json", false, "emit the report as JSON")
}
