// Package emitter publishes savings and acceptance metrics via OTEL.
package emitter

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/karsidev/karsi/normalize"
)

// SavingsEmitter emits per-application cost and savings metrics.
type SavingsEmitter struct {
	meter metric.Meter

	// Metrics
	currentCost      metric.Float64ObservableGauge
	projectedSavings metric.Float64ObservableGauge
	assetInfo        metric.Int64ObservableGauge
	acceptsTotal     metric.Int64Counter
	revokesTotal     metric.Int64Counter

	// State for observable gauges
	mu      sync.RWMutex
	rollups []normalize.ApplicationRollup
}

// NewSavingsEmitter creates a savings emitter.
func NewSavingsEmitter() (*SavingsEmitter, error) {
	meter := otel.Meter("karsi")

	e := &SavingsEmitter{
		meter: meter,
	}

	if err := e.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return e, nil
}

func (e *SavingsEmitter) initMetrics() error {
	var err error

	e.currentCost, err = e.meter.Float64ObservableGauge(
		"karsi_application_current_cost",
		metric.WithDescription("Current monthly cost per application"),
		metric.WithFloat64Callback(e.observeCost),
	)
	if err != nil {
		return fmt.Errorf("create current_cost gauge: %w", err)
	}

	e.projectedSavings, err = e.meter.Float64ObservableGauge(
		"karsi_application_projected_savings",
		metric.WithDescription("Projected monthly savings per application"),
		metric.WithFloat64Callback(e.observeSavings),
	)
	if err != nil {
		return fmt.Errorf("create projected_savings gauge: %w", err)
	}

	e.assetInfo, err = e.meter.Int64ObservableGauge(
		"karsi_application_assets",
		metric.WithDescription("Assets with recommendations per application and category"),
		metric.WithInt64Callback(e.observeAssets),
	)
	if err != nil {
		return fmt.Errorf("create assets gauge: %w", err)
	}

	e.acceptsTotal, err = e.meter.Int64Counter(
		"karsi_accepts_total",
		metric.WithDescription("Total recommendation acceptances"),
	)
	if err != nil {
		return fmt.Errorf("create accepts counter: %w", err)
	}

	e.revokesTotal, err = e.meter.Int64Counter(
		"karsi_revokes_total",
		metric.WithDescription("Total recommendation revocations"),
	)
	if err != nil {
		return fmt.Errorf("create revokes counter: %w", err)
	}

	return nil
}

// Update replaces the rollups backing the observable gauges.
func (e *SavingsEmitter) Update(rollups []normalize.ApplicationRollup) {
	e.mu.Lock()
	e.rollups = rollups
	e.mu.Unlock()

	var total float64
	for _, r := range rollups {
		total += r.TotalProjectedSavings
	}
	log.Debug().
		Int("applications", len(rollups)).
		Float64("projected_savings", total).
		Msg("savings metrics updated")
}

// RecordAccept counts an acceptance, labeled by the chosen variant.
func (e *SavingsEmitter) RecordAccept(ctx context.Context, variant string) {
	e.acceptsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("variant", variant),
	))
}

// RecordRevoke counts a revocation.
func (e *SavingsEmitter) RecordRevoke(ctx context.Context) {
	e.revokesTotal.Add(ctx, 1)
}

func (e *SavingsEmitter) observeCost(_ context.Context, o metric.Float64Observer) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, r := range e.rollups {
		o.Observe(r.TotalCurrentCost, metric.WithAttributes(
			attribute.String("application", r.Name),
		))
	}
	return nil
}

func (e *SavingsEmitter) observeSavings(_ context.Context, o metric.Float64Observer) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, r := range e.rollups {
		o.Observe(r.TotalProjectedSavings, metric.WithAttributes(
			attribute.String("application", r.Name),
		))
	}
	return nil
}

func (e *SavingsEmitter) observeAssets(_ context.Context, o metric.Int64Observer) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, r := range e.rollups {
		appAttr := attribute.String("application", r.Name)
		o.Observe(int64(len(r.Resources.VMs)), metric.WithAttributes(appAttr, attribute.String("category", "vm")))
		o.Observe(int64(len(r.Resources.DBs)), metric.WithAttributes(appAttr, attribute.String("category", "db")))
		o.Observe(int64(len(r.Resources.Storage)), metric.WithAttributes(appAttr, attribute.String("category", "storage")))
	}
	return nil
}
