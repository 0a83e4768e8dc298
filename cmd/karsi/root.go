package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/karsidev/karsi/backend"
	"github.com/karsidev/karsi/config"
)

var (
	version    = "0.1.0"
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "karsi",
		Short: "Cloud cost optimization dashboard",
		Long: `Karsi - Cloud Cost Optimization Dashboard

Karsi consumes a cost-optimization backend and turns its raw
recommendations into per-application savings views: serve them as a
JSON dashboard API, print reports, and accept or revoke
recommendations from the command line.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`Karsi {{.Version}} - Cloud Cost Optimization Dashboard
`)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "karsi.yaml", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// loadConfig reads the config file named by --config. A missing file is
// only an error when explicitly requested; otherwise defaults apply and
// individual commands decide what they require.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
			return config.Default(), nil
		}
		return nil, err
	}

	if !debug {
		if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			zerolog.SetGlobalLevel(level)
		}
	}
	return cfg, nil
}

// newBackendClient builds the API client shared by all commands.
func newBackendClient(cfg *config.Config) (*backend.Client, error) {
	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend.base_url is not configured (see %s)", configPath)
	}
	return backend.New(backend.Config{
		BaseURL:       cfg.Backend.BaseURL,
		SessionCookie: cfg.Backend.SessionCookie,
		Timeout:       cfg.Backend.Timeout,
		Logger:        log.Logger,
	})
}
