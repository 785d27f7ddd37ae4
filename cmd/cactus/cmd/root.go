package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	// Version is set via -ldflags at build time.
	Version = "0.1.0-dev"

	cfgFile  string
	noColor  bool
	traceOn  bool
	logger   *zap.SugaredLogger
	appConf  = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "cactus",
	Short: "CactUScript interpreter",
	Long: `cactus runs CactUScript programs: a small dynamically-typed scripting
language with two interchangeable execution backends, a tree-walking
evaluator and a bytecode compiler + stack VM.`,
	Version:           Version,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .cactusrc.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&traceOn, "trace", false, "trace execution to stderr")
}

// setup layers configuration per SPEC_FULL.md §4.1c: flags win over
// environment variables, which win over the config file, which wins over
// defaults. It also wires the trace logger (§4.1b): silent by default,
// a development logger when --trace is given.
func setup(cmd *cobra.Command, _ []string) error {
	appConf.SetEnvPrefix("CACTUS")
	appConf.AutomaticEnv()
	appConf.SetDefault("vm", false)
	appConf.SetDefault("color", true)
	appConf.SetDefault("history_file", "")

	if cfgFile != "" {
		appConf.SetConfigFile(cfgFile)
	} else {
		appConf.SetConfigName(".cactusrc")
		appConf.SetConfigType("yaml")
		appConf.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			appConf.AddConfigPath(home)
		}
	}
	if err := appConf.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if !cmd.Flags().Changed("no-color") && !appConf.GetBool("color") {
		noColor = true
	}
	color.NoColor = noColor || !isTerminal(os.Stdout)

	if !traceOn {
		logger = zap.NewNop().Sugar()
		return nil
	}
	devLogger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop().Sugar()
		return nil
	}
	logger = devLogger.Sugar()
	return nil
}

// isTerminal reports whether w is connected to a terminal, used to decide
// whether colorized output is appropriate (SPEC_FULL.md §4.1f).
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}
