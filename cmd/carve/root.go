package main

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/carve/internal/config"
	"github.com/arloliu/carve/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// configKeyAnnotation marks flags that override a config key.
const configKeyAnnotation = "carve_config_key"

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
	runID   string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:   "carve",
		Short: "Recover records from truncated or corrupted session documents",
		Long: `carve locates history records in Firefox session documents
(sessionstore.js, recovery.jsonlz4, upgrade backups) by their literal marker,
matches their braces while ignoring quoted text, and writes one row per
record. Documents do not need to be valid JSON: damaged records are skipped
and everything recoverable is kept.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: $HOME/.carve.yaml, then ./.carve.yaml)")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	bindKey(pf, "log-level", "log.level")
	bindKey(pf, "log-format", "log.format")

	root.AddCommand(a.newExtractCmd())
	root.AddCommand(a.newWatchCmd())
	root.AddCommand(a.newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// bindKey lets the flag called name override the config key.
func bindKey(fs *pflag.FlagSet, name, key string) {
	_ = fs.SetAnnotation(name, configKeyAnnotation, []string{key})
}

// setup binds the running command's flags, loads the configuration and
// initializes logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[configKeyAnnotation]
		if len(keys) == 0 || bindErr != nil {
			return
		}
		if err := a.v.BindPFlag(keys[0], f); err != nil {
			bindErr = fmt.Errorf("bind flag --%s: %w", f.Name, err)
		}
	})
	if bindErr != nil {
		return bindErr
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())
	a.logger, a.runID = logging.WithRunID(logging.New("cli"))
	a.logger.Debug("configuration loaded",
		slog.String("command", cmd.CommandPath()),
		slog.String("file", a.v.ConfigFileUsed()))

	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the carve version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "carve %s\n", version)
			return err
		},
	}
}
