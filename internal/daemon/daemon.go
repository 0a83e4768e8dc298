// Package daemon runs the background refresh loop that keeps the local
// snapshot store and metrics in sync with the optimization backend.
package daemon

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/karsidev/karsi/backend"
	"github.com/karsidev/karsi/normalize"
)

// Fetcher retrieves asset lists from the optimization backend.
type Fetcher interface {
	FetchApplications(ctx context.Context, f backend.Filters) (*backend.ApplicationsResponse, error)
}

// Recorder persists one refresh of normalized assets.
type Recorder interface {
	RecordSnapshot(assets []normalize.NormalizedAsset) (int64, error)
}

// RollupSink receives per-application rollups after each refresh.
type RollupSink interface {
	Update(rollups []normalize.ApplicationRollup)
}

// Config holds daemon configuration
type Config struct {
	Interval time.Duration
	Logger   zerolog.Logger
}

// Daemon manages the continuous refresh loop
type Daemon struct {
	fetcher  Fetcher
	recorder Recorder
	sink     RollupSink
	metrics  *Metrics
	logger   zerolog.Logger

	interval     time.Duration
	startTime    time.Time
	refreshCount atomic.Int64
}

// NewDaemon creates a new daemon instance. The sink may be nil when no
// metrics emitter is attached.
func NewDaemon(cfg Config, fetcher Fetcher, recorder Recorder, sink RollupSink) (*Daemon, error) {
	metrics, err := NewMetrics()
	if err != nil {
		return nil, err
	}

	return &Daemon{
		fetcher:   fetcher,
		recorder:  recorder,
		sink:      sink,
		metrics:   metrics,
		logger:    cfg.Logger,
		interval:  cfg.Interval,
		startTime: time.Now(),
	}, nil
}

// Run executes an immediate refresh, then refreshes on every tick until
// the context is cancelled. Refresh failures are logged and counted but
// never stop the loop.
func (d *Daemon) Run(ctx context.Context) error {
	_ = d.refresh(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = d.refresh(ctx)
		}
	}
}

// RunOnce performs a single refresh and reports its outcome.
func (d *Daemon) RunOnce(ctx context.Context) error {
	return d.refresh(ctx)
}

func (d *Daemon) refresh(ctx context.Context) error {
	start := time.Now()
	d.refreshCount.Add(1)

	resp, err := d.fetcher.FetchApplications(ctx, backend.Filters{})
	if err != nil {
		d.metrics.RecordRefresh(ctx, "error", time.Since(start))
		d.logger.Error().Err(err).Msg("refresh failed")
		return err
	}

	all := append(resp.Assigned, resp.Unassigned...)
	normalized := normalize.NormalizeAll(all)

	rev, err := d.recorder.RecordSnapshot(normalized)
	if err != nil {
		d.metrics.RecordRefresh(ctx, "storage_error", time.Since(start))
		d.logger.Error().Err(err).Msg("snapshot write failed")
		return err
	}

	if d.sink != nil {
		rollups := normalize.RollupApplications(resp.Assigned)
		if unassigned := normalize.ConsolidateUnassigned(resp.Unassigned); unassigned != nil {
			rollups = append(rollups, *unassigned)
		}
		d.sink.Update(rollups)
	}

	d.metrics.RecordRefresh(ctx, "ok", time.Since(start))
	d.metrics.RecordAssetsDiscovered(ctx, int64(len(all)))

	d.logger.Info().
		Int64("revision", rev).
		Int("assigned", len(resp.Assigned)).
		Int("unassigned", len(resp.Unassigned)).
		Dur("duration", time.Since(start)).
		Msg("refresh complete")
	return nil
}

// Health returns daemon health status
func (d *Daemon) Health() HealthStatus {
	return HealthStatus{
		Status: "healthy",
		Uptime: int64(time.Since(d.startTime).Seconds()),
	}
}

// HealthStatus represents daemon health
type HealthStatus struct {
	Status string `json:"status"`
	Uptime int64  `json:"uptime_seconds"`
}

// RefreshCount returns total refreshes attempted
func (d *Daemon) RefreshCount() int64 {
	return d.refreshCount.Load()
}
