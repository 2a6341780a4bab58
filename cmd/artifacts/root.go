package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.lorenzomilicia.dev/visa-approval-prediction/internal/config"
	"go.lorenzomilicia.dev/visa-approval-prediction/internal/util"
)

var rootCmd = &cobra.Command{
	Use:           "artifacts",
	Short:         "Inspect and publish visa approval pipeline artifacts",
	Long:          `A CLI tool to inspect YAML configs, .npy arrays, serialized objects and CSV tables produced by the training pipeline, and to push them to S3-compatible storage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	envFile    string
	configFile string
	debug      bool

	cfg *config.Config
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Path to .env file to load before running commands")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load env file '%s': %w", envFile, err)
			}
		}

		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		if debug {
			cfg.Log.Level = "debug"
		}
		return setupLogging(cfg.Log, cmd.ErrOrStderr())
	}
}

// setupLogging points the global logger at w. In auto format a terminal
// gets console output and anything else gets JSON.
func setupLogging(lc config.LogConfig, w io.Writer) error {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", lc.Level, err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	console := lc.Format == "console"
	if f, ok := w.(*os.File); ok && lc.Format == "auto" {
		console = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	if console {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	}

	util.SetLogger(log.Logger)
	return nil
}
