package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
var (
	AttrResource       = attribute.Key("resource")
	AttrOutcome        = attribute.Key("outcome")
	AttrHTTPMethod     = attribute.Key("http_method")
	AttrHTTPRoute      = attribute.Key("http_route")
	AttrHTTPStatusCode = attribute.Key("http_status_code")
)

// Bucket boundaries in seconds, except BatchSizeBuckets which counts updates.
var (
	HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	DBDurationBuckets   = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
	BatchSizeBuckets    = []float64{1, 2, 3, 5, 10, 25, 50, 100, 250, 500}
)

// Counter is a monotonic int64 instrument.
type Counter struct {
	metric.Int64Counter
}

// NewCounter registers a counter on meter.
func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("counter %s: %w", name, err)
	}
	return &Counter{c}, nil
}

// Inc adds one.
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// HistogramOpts describes a float64 histogram.
type HistogramOpts struct {
	Name        string
	Description string
	Unit        string
	Boundaries  []float64
}

// Histogram is a float64 distribution instrument.
type Histogram struct {
	h metric.Float64Histogram
}

// NewHistogram registers a histogram on meter.
func NewHistogram(meter metric.Meter, opts HistogramOpts) (*Histogram, error) {
	hopts := []metric.Float64HistogramOption{
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	}
	if len(opts.Boundaries) > 0 {
		hopts = append(hopts, metric.WithExplicitBucketBoundaries(opts.Boundaries...))
	}
	h, err := meter.Float64Histogram(opts.Name, hopts...)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", opts.Name, err)
	}
	return &Histogram{h: h}, nil
}

// Record records value.
func (h *Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	h.h.Record(ctx, value, metric.WithAttributes(attrs...))
}

// RecordDuration records d in seconds.
func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.Record(ctx, d.Seconds(), attrs...)
}

// Reorder outcomes recorded on cms_reorder_batches_total.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeNotFound   = "not_found"
	OutcomeConflict   = "conflict"
	OutcomeError      = "error"
)

// ReorderMetrics records persisted reorder batches per resource.
type ReorderMetrics struct {
	batches   *Counter
	batchSize *Histogram
	duration  *Histogram
}

// NewReorderMetrics registers the reorder instruments on meter.
func NewReorderMetrics(meter metric.Meter) (*ReorderMetrics, error) {
	batches, err := NewCounter(meter,
		"cms_reorder_batches_total",
		"Reorder batches by resource and outcome",
		"{batch}",
	)
	if err != nil {
		return nil, err
	}

	batchSize, err := NewHistogram(meter, HistogramOpts{
		Name:        "cms_reorder_batch_size",
		Description: "Number of updates in a reorder batch",
		Unit:        "{update}",
		Boundaries:  BatchSizeBuckets,
	})
	if err != nil {
		return nil, err
	}

	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "cms_reorder_duration_seconds",
		Description: "Time spent applying a reorder batch",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &ReorderMetrics{batches: batches, batchSize: batchSize, duration: duration}, nil
}

// RecordBatch records one batch. Size and duration are only recorded for
// batches that reached storage (outcome ok or conflict).
func (m *ReorderMetrics) RecordBatch(ctx context.Context, resource, outcome string, size int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.batches.Inc(ctx, AttrResource.String(resource), AttrOutcome.String(outcome))
	if outcome == OutcomeOK || outcome == OutcomeConflict {
		m.batchSize.Record(ctx, float64(size), AttrResource.String(resource))
		m.duration.RecordDuration(ctx, elapsed, AttrResource.String(resource))
	}
}
