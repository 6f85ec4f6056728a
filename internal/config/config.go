// Package config loads carve settings from a YAML file, CARVE_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/arloliu/carve/errs"
	"github.com/arloliu/carve/extract"
	"github.com/arloliu/carve/format"
	"github.com/arloliu/carve/internal/logging"
	"github.com/arloliu/carve/scan"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the config file name searched in $HOME and the working directory.
	FileName = ".carve"
	// EnvPrefix prefixes environment overrides, e.g. CARVE_LOG_LEVEL.
	EnvPrefix = "CARVE"
)

// Config is the complete CLI configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch"`
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ExtractConfig mirrors extract.Config in a file-friendly shape. Bracket
// pairs are written as two characters, opener first.
type ExtractConfig struct {
	Marker            string   `mapstructure:"marker" yaml:"marker"`
	RecordBrackets    string   `mapstructure:"record_brackets" yaml:"record_brackets"`
	PathBrackets      string   `mapstructure:"path_brackets" yaml:"path_brackets"`
	Quotes            string   `mapstructure:"quotes" yaml:"quotes"`
	Escape            string   `mapstructure:"escape" yaml:"escape"`
	Fields            []string `mapstructure:"fields" yaml:"fields"`
	Columns           []string `mapstructure:"columns" yaml:"columns"`
	PathSeparator     string   `mapstructure:"path_separator" yaml:"path_separator"`
	TimestampMarker   string   `mapstructure:"timestamp_marker" yaml:"timestamp_marker"`
	TimeLayout        string   `mapstructure:"time_layout" yaml:"time_layout"`
	Timezone          string   `mapstructure:"timezone" yaml:"timezone"`
	BoundToNextMarker bool     `mapstructure:"bound_to_next_marker" yaml:"bound_to_next_marker"`
	Strict            bool     `mapstructure:"strict" yaml:"strict"`
	Dedup             bool     `mapstructure:"dedup" yaml:"dedup"`
	ProgressEvery     int      `mapstructure:"progress_every" yaml:"progress_every"`
}

// OutputConfig controls where rows go.
type OutputConfig struct {
	Path     string `mapstructure:"path" yaml:"path"`
	Format   string `mapstructure:"format" yaml:"format"`
	Append   bool   `mapstructure:"append" yaml:"append"`
	Jobs     int    `mapstructure:"jobs" yaml:"jobs"`
	Progress bool   `mapstructure:"progress" yaml:"progress"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// Default returns the configuration for Firefox session documents.
func Default() Config {
	ec := extract.DefaultConfig()

	return Config{
		Log: LogConfig{Level: "warn", Format: "text"},
		Extract: ExtractConfig{
			Marker:          ec.Marker,
			RecordBrackets:  ec.RecordBrackets.Open + ec.RecordBrackets.Close,
			PathBrackets:    ec.PathBrackets.Open + ec.PathBrackets.Close,
			Quotes:          ec.Quotes,
			Escape:          string(ec.Escape),
			Fields:          ec.Fields,
			Columns:         ec.Columns,
			PathSeparator:   ec.PathSeparator,
			TimestampMarker: ec.TimestampMarker,
			TimeLayout:      ec.TimeLayout,
			Timezone:        "Local",
			ProgressEvery:   ec.ProgressEvery,
		},
		Output: OutputConfig{
			Path:     "-",
			Format:   format.OutputCSV.String(),
			Jobs:     runtime.NumCPU(),
			Progress: true,
		},
		Watch: WatchConfig{Debounce: 500 * time.Millisecond},
	}
}

// SetDefaults registers every key of Default with v so that environment
// variables and flags bound to v can override any of them.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("extract.marker", d.Extract.Marker)
	v.SetDefault("extract.record_brackets", d.Extract.RecordBrackets)
	v.SetDefault("extract.path_brackets", d.Extract.PathBrackets)
	v.SetDefault("extract.quotes", d.Extract.Quotes)
	v.SetDefault("extract.escape", d.Extract.Escape)
	v.SetDefault("extract.fields", d.Extract.Fields)
	v.SetDefault("extract.columns", d.Extract.Columns)
	v.SetDefault("extract.path_separator", d.Extract.PathSeparator)
	v.SetDefault("extract.timestamp_marker", d.Extract.TimestampMarker)
	v.SetDefault("extract.time_layout", d.Extract.TimeLayout)
	v.SetDefault("extract.timezone", d.Extract.Timezone)
	v.SetDefault("extract.bound_to_next_marker", d.Extract.BoundToNextMarker)
	v.SetDefault("extract.strict", d.Extract.Strict)
	v.SetDefault("extract.dedup", d.Extract.Dedup)
	v.SetDefault("extract.progress_every", d.Extract.ProgressEvery)

	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.append", d.Output.Append)
	v.SetDefault("output.jobs", d.Output.Jobs)
	v.SetDefault("output.progress", d.Output.Progress)

	v.SetDefault("watch.debounce", d.Watch.Debounce)
}

// Load reads the configuration into v and decodes it.
//
// With file set, that file must exist. Otherwise .carve.yaml is looked up in
// $HOME and then the working directory, and a missing file is not an error.
// CARVE_* environment variables override file values ("." in a key becomes
// "_": CARVE_OUTPUT_FORMAT).
//
// Returns:
//   - Config: Validated configuration
//   - error: File read, decode, or validation errors
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: decode: %w", errs.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration without building an extractor.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log format must be text or json, got %q", errs.ErrInvalidConfig, c.Log.Format)
	}
	if _, err := format.ParseOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if c.Output.Jobs < 0 {
		return fmt.Errorf("%w: jobs must not be negative: %d", errs.ErrInvalidConfig, c.Output.Jobs)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("%w: debounce must not be negative: %s", errs.ErrInvalidConfig, c.Watch.Debounce)
	}

	_, err := c.Extract.ToExtract()

	return err
}

// ToExtract converts the file form into an extract.Config.
func (e *ExtractConfig) ToExtract() (extract.Config, error) {
	recordPair, err := pair(e.RecordBrackets)
	if err != nil {
		return extract.Config{}, fmt.Errorf("record brackets: %w", err)
	}
	pathPair, err := pair(e.PathBrackets)
	if err != nil {
		return extract.Config{}, fmt.Errorf("path brackets: %w", err)
	}
	if strings.ContainsAny(recordPair.Open+recordPair.Close, pathPair.Open+pathPair.Close) {
		return extract.Config{}, fmt.Errorf("%w: record %q and path %q pairs overlap",
			errs.ErrInvalidBrackets, e.RecordBrackets, e.PathBrackets)
	}

	if e.Marker == "" || !strings.HasPrefix(e.Marker, recordPair.Open) {
		return extract.Config{}, fmt.Errorf("%w: %q must start with %q", errs.ErrInvalidMarker, e.Marker, recordPair.Open)
	}
	if e.Quotes == "" {
		return extract.Config{}, fmt.Errorf("%w: empty quote set", errs.ErrInvalidQuotes)
	}
	if len(e.Escape) > 1 {
		return extract.Config{}, fmt.Errorf("%w: escape must be one byte, got %q", errs.ErrInvalidConfig, e.Escape)
	}

	loc, err := location(e.Timezone)
	if err != nil {
		return extract.Config{}, err
	}

	cfg := extract.DefaultConfig()
	cfg.Marker = e.Marker
	cfg.RecordBrackets = recordPair
	cfg.PathBrackets = pathPair
	cfg.Quotes = e.Quotes
	cfg.Escape = 0
	if e.Escape != "" {
		cfg.Escape = e.Escape[0]
	}
	cfg.Fields = e.Fields
	cfg.Columns = e.Columns
	cfg.PathSeparator = e.PathSeparator
	cfg.TimestampMarker = e.TimestampMarker
	cfg.TimeLayout = e.TimeLayout
	cfg.Location = loc
	cfg.BoundToNextMarker = e.BoundToNextMarker
	cfg.Dedup = e.Dedup
	cfg.ProgressEvery = e.ProgressEvery
	cfg.Policy = extract.SkipUnterminated
	if e.Strict {
		cfg.Policy = extract.AbortOnUnterminated
	}

	if err := cfg.Validate(); err != nil {
		return extract.Config{}, err
	}

	return cfg, nil
}

// pair parses a two-byte bracket pair such as "{}".
func pair(s string) (scan.Brackets, error) {
	if len(s) != 2 {
		return scan.Brackets{}, fmt.Errorf("%w: %q is not an opener and a closer", errs.ErrInvalidBrackets, s)
	}
	b := scan.Brackets{Open: s[:1], Close: s[1:]}

	return b, b.Validate()
}

func location(name string) (*time.Location, error) {
	switch name {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone: %w", errs.ErrInvalidConfig, err)
	}

	return loc, nil
}

// WriteYAML writes c as YAML.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return enc.Close()
}
