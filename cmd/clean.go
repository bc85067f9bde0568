package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/incidentclean-cli/internal/dataset"
	"github.com/KaramelBytes/incidentclean-cli/internal/logger"
	"github.com/KaramelBytes/incidentclean-cli/internal/metrics"
	"github.com/KaramelBytes/incidentclean-cli/internal/pipeline"
	"github.com/KaramelBytes/incidentclean-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	clOutput    string
	clOutDir    string
	clStats     string
	clMetrics   string
	clSkip      []string
	clRules     string
	clRowMin    int
	clColMin    int
	clSummaries bool
	clQuiet     bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <files...>",
	Short: "Run the cleaning pipeline over CSV/TSV/XLSX files and write cleaned CSV",
	Long: `Run the cleaning pipeline over one or more files (globs allowed).

With a single input and no --output/--out-dir the cleaned CSV is written to
stdout. Multiple inputs require --out-dir; each is written as <name>.clean.csv.
Inputs sharing a base name get <name>__2.clean.csv, <name>__3.clean.csv, ...`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := utils.ExpandInputs(args)
		if err != nil {
			return err
		}
		if len(files) > 1 && clOutDir == "" {
			return fmt.Errorf("%d inputs matched: use --out-dir", len(files))
		}
		if clOutput != "" && clOutDir != "" {
			return fmt.Errorf("--output and --out-dir are mutually exclusive")
		}
		vocab, err := vocabulary(clRules)
		if err != nil {
			return err
		}

		pc := pipeline.Config{
			RowMinNonNull: cfg.RowMinNonNull,
			ColMinNonNull: cfg.ColMinNonNull,
			Renames:       cfg.ColumnRenames,
			Skip:          clSkip,
			Summaries:     clSummaries,
		}
		if cmd.Flags().Changed("row-min") {
			pc.RowMinNonNull = clRowMin
		}
		if cmd.Flags().Changed("col-min") {
			pc.ColMinNonNull = clColMin
		}
		if clOutDir != "" {
			if err := os.MkdirAll(clOutDir, 0o755); err != nil {
				return fmt.Errorf("mkdir out dir: %w", err)
			}
		}

		stderr := cmd.ErrOrStderr()
		rec := metrics.New()
		var summaries []*pipeline.Summary
		written := make(map[string]struct{}, len(files))
		total := len(files)
		for i, path := range files {
			if !clQuiet {
				fmt.Fprintf(stderr, "[%d/%d] Cleaning %s...\n", i+1, total, filepath.Base(path))
			}
			ds, err := dataset.Load(path, cfg.ReadOptions())
			if err != nil {
				logger.Error("load failed", "file", path, "error", err.Error())
				return err
			}
			sum, err := pipeline.Run(cmd.Context(), ds, pc, vocab)
			rec.Observe(sum)
			if err != nil {
				if clMetrics != "" {
					_ = rec.WriteTextfile(clMetrics)
				}
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			summaries = append(summaries, sum)

			var buf bytes.Buffer
			if err := dataset.WriteCSV(&buf, ds); err != nil {
				return err
			}
			dest := clOutput
			if clOutDir != "" {
				dest = outDirDest(clOutDir, path, written)
				if base := utils.CleanedName(path); filepath.Base(dest) != base {
					logger.Warn("output name taken", "file", path, "base", base, "dest", dest)
					if !clQuiet {
						fmt.Fprintf(stderr, "⚠ Detected existing output, writing to %s to avoid overwrite.\n", filepath.Base(dest))
					}
				}
			}
			if dest == "" || dest == "-" {
				if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
					return err
				}
			} else {
				if err := utils.SafeWriteFile(dest, buf.Bytes()); err != nil {
					return err
				}
				if !clQuiet {
					fmt.Fprintf(stderr, "✓ Wrote %s (%d rows x %d columns, %d -> %d rows)\n", dest, sum.RowsOut, sum.ColumnsOut, sum.RowsIn, sum.RowsOut)
				}
			}
			if clSummaries && !clQuiet {
				fmt.Fprintln(stderr, sum.Fatality)
				fmt.Fprintln(stderr, sum.Gender)
			}
		}

		if clStats != "" {
			var v any = summaries
			if len(summaries) == 1 {
				v = summaries[0]
			}
			b, err := utils.PrettyJSON(v)
			if err != nil {
				return err
			}
			if err := utils.SafeWriteFile(clStats, b); err != nil {
				return err
			}
			if !clQuiet {
				fmt.Fprintf(stderr, "✓ Run summary written to %s\n", clStats)
			}
		}
		if clMetrics != "" {
			if err := rec.WriteTextfile(clMetrics); err != nil {
				return err
			}
		}
		return nil
	},
}

// outDirDest picks <name>.clean.csv under dir, or <name>__N.clean.csv when an
// earlier input of this run already took that name. The chosen path is
// recorded in used.
func outDirDest(dir, path string, used map[string]struct{}) string {
	name := utils.CleanedName(path)
	dest := filepath.Join(dir, name)
	if _, taken := used[dest]; taken {
		stem := strings.TrimSuffix(name, ".clean.csv")
		for idx := 2; ; idx++ {
			cand := filepath.Join(dir, fmt.Sprintf("%s__%d.clean.csv", stem, idx))
			if _, taken := used[cand]; !taken {
				dest = cand
				break
			}
		}
	}
	used[dest] = struct{}{}
	return dest
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&clOutput, "output", "o", "", "output CSV path for a single input ('-' for stdout)")
	cleanCmd.Flags().StringVar(&clOutDir, "out-dir", "", "directory for <name>.clean.csv outputs")
	cleanCmd.Flags().StringVar(&clStats, "stats", "", "write the JSON run summary to this path")
	cleanCmd.Flags().StringVar(&clMetrics, "metrics-file", "", "write Prometheus textfile metrics for the run to this path")
	cleanCmd.Flags().StringSliceVar(&clSkip, "skip", nil, fmt.Sprintf("stages to skip (%v)", pipeline.Stages()))
	cleanCmd.Flags().StringVar(&clRules, "rules", "", "YAML vocabulary file (overrides rules_file)")
	cleanCmd.Flags().IntVar(&clRowMin, "row-min", 2, "drop rows with fewer non-missing cells (overrides config)")
	cleanCmd.Flags().IntVar(&clColMin, "col-min", 1, "drop columns with fewer non-missing cells (overrides config)")
	cleanCmd.Flags().BoolVar(&clSummaries, "summaries", false, "print fatality and gender counts after cleaning")
	cleanCmd.Flags().BoolVar(&clQuiet, "quiet", false, "suppress progress and non-essential output")
}
