package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/karsidev/karsi/acceptance"
	"github.com/karsidev/karsi/dashboard"
	"github.com/karsidev/karsi/internal/daemon"
	"github.com/karsidev/karsi/internal/emitter"
	"github.com/karsidev/karsi/internal/telemetry"
	"github.com/karsidev/karsi/storage"
	"github.com/karsidev/karsi/wal"
)

var (
	serveListen   string
	serveInterval time.Duration
	serveOnce     bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard server and refresh daemon",
	Long: `Run the dashboard API server together with the background refresh
daemon. Each refresh polls the optimization backend, normalizes the
assets, records a snapshot revision and updates savings metrics.

With --once, perform a single refresh and exit without serving.`,
	Example: `  karsi serve                       # serve with config defaults
  karsi serve --listen :9090        # override the listen address
  karsi serve --once                # one refresh, then exit`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (overrides config)")
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 0, "Refresh interval (overrides config)")
	serveCmd.Flags().BoolVar(&serveOnce, "once", false, "Refresh once and exit")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Server.ListenAddr = serveListen
	}
	if serveInterval != 0 {
		cfg.Refresh.Interval = serveInterval
	}

	ctx := cmd.Context()

	promExporter, err := otelprom.New()
	if err != nil {
		return fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider, err := telemetry.NewProvider(ctx, cfg.Telemetry, promExporter)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	client, err := newBackendClient(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Storage.Dir, 0o750); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	store, err := storage.Open(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	journal, err := wal.Open(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = journal.Close() }()

	emit, err := emitter.NewSavingsEmitter()
	if err != nil {
		return fmt.Errorf("create emitter: %w", err)
	}

	d, err := daemon.NewDaemon(daemon.Config{
		Interval: cfg.Refresh.Interval,
		Logger:   log.Logger,
	}, client, store, emit)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	if serveOnce {
		return d.RunOnce(ctx)
	}

	controller := acceptance.NewController(client, store, journal, log.Logger)
	server := dashboard.NewServer(client, controller, emit, d, log.Logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var g run.Group
	g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))

	daemonCtx, cancelDaemon := context.WithCancel(ctx)
	g.Add(func() error {
		return d.Run(daemonCtx)
	}, func(error) {
		cancelDaemon()
	})

	g.Add(func() error {
		log.Info().Str("addr", cfg.Server.ListenAddr).Msg("starting dashboard server")
		return httpServer.ListenAndServe()
	}, func(error) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	})

	err = g.Run()

	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		log.Info().Str("signal", sigErr.Signal.String()).Msg("shutting down")
		return nil
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
