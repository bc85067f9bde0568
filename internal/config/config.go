package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/incidentclean-cli/internal/dataset"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Row/column filter thresholds (minimum non-missing cells to keep).
	RowMinNonNull int `mapstructure:"row_min_non_null" yaml:"row_min_non_null" validate:"min=0"`
	ColMinNonNull int `mapstructure:"col_min_non_null" yaml:"col_min_non_null" validate:"min=0"`

	// Loader
	MissingTokens []string `mapstructure:"missing_tokens" yaml:"missing_tokens"`
	SheetName     string   `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex    int      `mapstructure:"sheet_index" yaml:"sheet_index" validate:"min=0"`

	ColumnRenames []dataset.Rename `mapstructure:"column_renames" yaml:"column_renames" validate:"dive"`
	// RulesFile overrides the built-in vocabulary (YAML).
	RulesFile string `mapstructure:"rules_file" yaml:"rules_file,omitempty" validate:"omitempty,file"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=json human text"`
	HeadRows  int    `mapstructure:"head_rows" yaml:"head_rows" validate:"min=1,max=1000"`
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"row_min_non_null", "col_min_non_null", "missing_tokens", "sheet_name", "sheet_index",
	"column_renames", "rules_file", "log_level", "log_format", "head_rows",
}

var validate = validator.New()

// Validate checks value ranges and enumerations.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s: %w", strings.Join(msgs, "; "), err)
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ReadOptions returns loader options from the configuration.
func (c *Global) ReadOptions() dataset.ReadOptions {
	opt := dataset.DefaultReadOptions()
	if c.MissingTokens != nil {
		opt.MissingTokens = append([]string(nil), c.MissingTokens...)
	}
	opt.SheetName = c.SheetName
	if c.SheetIndex > 0 {
		opt.SheetIndex = c.SheetIndex
	}
	return opt
}

// Set assigns one key from its string form. List keys take comma-separated
// values; column_renames takes from=to pairs ("fatal_(y/n)=fatal").
func (c *Global) Set(key, val string) error {
	switch key {
	case "row_min_non_null", "col_min_non_null", "sheet_index", "head_rows":
		i, err := cast.ToIntE(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		switch key {
		case "row_min_non_null":
			c.RowMinNonNull = i
		case "col_min_non_null":
			c.ColMinNonNull = i
		case "sheet_index":
			c.SheetIndex = i
		default:
			c.HeadRows = i
		}
	case "missing_tokens":
		c.MissingTokens = splitList(val)
	case "sheet_name":
		c.SheetName = val
	case "column_renames":
		var rs []dataset.Rename
		for _, p := range splitList(val) {
			from, to, ok := strings.Cut(p, "=")
			if !ok {
				return fmt.Errorf("invalid rename %q (use from=to)", p)
			}
			rs = append(rs, dataset.Rename{From: strings.TrimSpace(from), To: strings.TrimSpace(to)})
		}
		c.ColumnRenames = rs
	case "rules_file":
		c.RulesFile = val
	case "log_level":
		c.LogLevel = strings.ToLower(val)
	case "log_format":
		c.LogFormat = strings.ToLower(val)
	default:
		return fmt.Errorf("unknown key: %s (keys: %s)", key, strings.Join(Keys, ", "))
	}
	return c.Validate()
}

func splitList(val string) []string {
	out := []string{}
	for _, p := range strings.Split(val, ",") {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// Dir returns ~/.incidentclean.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".incidentclean"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.incidentclean/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("INCIDENTCLEAN")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("row_min_non_null", 2)
	v.SetDefault("col_min_non_null", 1)
	v.SetDefault("missing_tokens", dataset.DefaultMissingTokens)
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	v.SetDefault("column_renames", []dataset.Rename{{From: "fatal_(y/n)", To: "fatal"}})
	v.SetDefault("rules_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "human")
	v.SetDefault("head_rows", 10)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
