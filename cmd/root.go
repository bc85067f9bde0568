package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/incidentclean-cli/internal/clean"
	cfgpkg "github.com/KaramelBytes/incidentclean-cli/internal/config"
	"github.com/KaramelBytes/incidentclean-cli/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "incidentclean",
	Short: "incidentclean: clean shark-attack incident datasets",
	Long: `incidentclean loads incident spreadsheets (CSV/XLSX), normalizes column names,
drops sparse and duplicate rows, and canonicalizes the sex, country, fatal, type
and species columns using a configurable keyword vocabulary.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return loadConfig(cmd.Flags()) },
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.incidentclean/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: human|json (overrides config)")
}

func loadConfig(f *pflag.FlagSet) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	// Apply CLI overrides if provided
	if f.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	lvl, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	format, err := logger.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)
	logger.SetFormat(format)
	return nil
}

// vocabulary returns the built-in vocabulary, or the one from path (falling
// back to the configured rules_file) overlaid on it.
func vocabulary(path string) (clean.Vocabulary, error) {
	if path == "" && cfg != nil {
		path = cfg.RulesFile
	}
	if path == "" {
		return clean.DefaultVocabulary(), nil
	}
	v, err := clean.LoadVocabulary(path)
	if err != nil {
		return clean.Vocabulary{}, err
	}
	logger.Debug("vocabulary loaded", "path", path, "species_rules", len(v.SpeciesRules))
	return v, nil
}
