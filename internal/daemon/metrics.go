package daemon

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds operational metrics using OTEL semantic conventions
type Metrics struct {
	refreshes        metric.Int64Counter
	refreshDuration  metric.Float64Histogram
	assetsDiscovered metric.Int64Gauge
}

// NewMetrics creates daemon metrics following OTEL semantic conventions
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("karsi.daemon")

	refreshes, err := meter.Int64Counter(
		"karsi.daemon.refreshes",
		metric.WithDescription("Number of refresh runs"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	refreshDuration, err := meter.Float64Histogram(
		"karsi.daemon.refresh.duration",
		metric.WithDescription("Duration of refresh operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	assetsDiscovered, err := meter.Int64Gauge(
		"karsi.assets.discovered",
		metric.WithDescription("Number of assets in the latest refresh"),
		metric.WithUnit("{asset}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		refreshes:        refreshes,
		refreshDuration:  refreshDuration,
		assetsDiscovered: assetsDiscovered,
	}, nil
}

// RecordRefresh records one refresh run with its outcome
func (m *Metrics) RecordRefresh(ctx context.Context, status string, d time.Duration) {
	m.refreshes.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
	m.refreshDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordAssetsDiscovered records the asset count of the latest refresh
func (m *Metrics) RecordAssetsDiscovered(ctx context.Context, count int64) {
	m.assetsDiscovered.Record(ctx, count)
}
