// Package telemetry records board activity through OpenTelemetry metrics.
package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Recorder records export registry activity.
// Use NewRecorder() for OTel metrics or Noop{} when disabled.
type Recorder interface {
	// ExportAdded records one export registration.
	ExportAdded()

	// ExportRemoved records the number of records a removal took out.
	ExportRemoved(records int)

	// Resolution records one resolution call and how many exports matched.
	// Mode is one of "first", "all", "first_key", "all_key".
	Resolution(mode string, matches int)

	// Ambiguity records a single-valued resolution that matched more than one export.
	Ambiguity()

	// NotifyPass records one notification pass and the subscriptions it reassigned.
	NotifyPass(touched int)
}

// otelRecorder implements Recorder using OpenTelemetry.
type otelRecorder struct {
	exportsAdded   metric.Int64Counter
	exportsRemoved metric.Int64Counter
	resolutions    metric.Int64Counter
	matches        metric.Int64Histogram
	ambiguities    metric.Int64Counter
	notifyPasses   metric.Int64Counter
	notifyTouched  metric.Int64Histogram
}

var (
	defaultRecorder     *otelRecorder
	defaultRecorderOnce sync.Once
	defaultRecorderErr  error
)

// getDefaultRecorder returns the default OTel recorder instance.
// Lazily initializes the instruments on first call.
func getDefaultRecorder() (*otelRecorder, error) {
	defaultRecorderOnce.Do(func() {
		defaultRecorder, defaultRecorderErr = newOtelRecorder()
	})
	return defaultRecorder, defaultRecorderErr
}

// newOtelRecorder creates a new OTel recorder instance.
func newOtelRecorder() (*otelRecorder, error) {
	meter := otel.Meter("patchbay")

	exportsAdded, err := meter.Int64Counter("patchbay.exports.added",
		metric.WithDescription("Number of export records registered"),
	)
	if err != nil {
		return nil, err
	}

	exportsRemoved, err := meter.Int64Counter("patchbay.exports.removed",
		metric.WithDescription("Number of export records removed"),
	)
	if err != nil {
		return nil, err
	}

	resolutions, err := meter.Int64Counter("patchbay.resolutions",
		metric.WithDescription("Number of resolution calls"),
	)
	if err != nil {
		return nil, err
	}

	matches, err := meter.Int64Histogram("patchbay.resolution.matches",
		metric.WithDescription("Exports matched per resolution call"),
	)
	if err != nil {
		return nil, err
	}

	ambiguities, err := meter.Int64Counter("patchbay.resolutions.ambiguous",
		metric.WithDescription("Single-valued resolutions that matched more than one export"),
	)
	if err != nil {
		return nil, err
	}

	notifyPasses, err := meter.Int64Counter("patchbay.notify.passes",
		metric.WithDescription("Number of subscription notification passes"),
	)
	if err != nil {
		return nil, err
	}

	notifyTouched, err := meter.Int64Histogram("patchbay.notify.touched",
		metric.WithDescription("Subscriptions reassigned per notification pass"),
	)
	if err != nil {
		return nil, err
	}

	return &otelRecorder{
		exportsAdded:   exportsAdded,
		exportsRemoved: exportsRemoved,
		resolutions:    resolutions,
		matches:        matches,
		ambiguities:    ambiguities,
		notifyPasses:   notifyPasses,
		notifyTouched:  notifyTouched,
	}, nil
}

// NewRecorder returns a Recorder that uses OpenTelemetry.
// If instrument creation fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewRecorder() Recorder {
	r, err := getDefaultRecorder()
	if err != nil {
		slog.Warn("Metrics initialization failed, using no-op recorder.", "error", err)
		return Noop{}
	}
	return r
}

// ExportAdded records one export registration.
func (r *otelRecorder) ExportAdded() {
	r.exportsAdded.Add(context.Background(), 1)
}

// ExportRemoved records removed export records.
func (r *otelRecorder) ExportRemoved(records int) {
	r.exportsRemoved.Add(context.Background(), int64(records))
}

// Resolution records one resolution call.
func (r *otelRecorder) Resolution(mode string, matched int) {
	attrs := metric.WithAttributes(attribute.String("mode", mode))
	r.resolutions.Add(context.Background(), 1, attrs)
	r.matches.Record(context.Background(), int64(matched), attrs)
}

// Ambiguity records an ambiguous single-valued resolution.
func (r *otelRecorder) Ambiguity() {
	r.ambiguities.Add(context.Background(), 1)
}

// NotifyPass records one notification pass.
func (r *otelRecorder) NotifyPass(touched int) {
	r.notifyPasses.Add(context.Background(), 1)
	r.notifyTouched.Record(context.Background(), int64(touched))
}
