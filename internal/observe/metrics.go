// Package observe provides application-wide observability primitives for
// chatvox: OpenTelemetry metrics with a Prometheus exporter bridge so the
// instruments stay scrapeable via the standard /metrics endpoint.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) is provided
// for convenience; tests should use [NewMetrics] with a custom
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all chatvox metrics.
const meterName = "github.com/chatvox/chatvox"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// CommandDuration tracks chat command handling latency. Use with
	// attribute.String("command", ...).
	CommandDuration metric.Float64Histogram

	// SynthesisDuration tracks text-to-speech synthesis plus playback
	// latency. Use with attribute.String("provider", ...).
	SynthesisDuration metric.Float64Histogram

	// CommandsProcessed counts handled chat commands. Use with attributes:
	//   attribute.String("command", ...), attribute.String("status", ...)
	CommandsProcessed metric.Int64Counter

	// ProviderErrors counts synthesis provider errors. Use with attribute:
	//   attribute.String("provider", ...)
	ProviderErrors metric.Int64Counter

	// PlaybackDropped counts speak requests dropped because the playback
	// slot was busy.
	PlaybackDropped metric.Int64Counter

	// ActivePlaybacks tracks the number of in-flight synthesis/playback
	// goroutines. With a single playback slot this is 0 or 1.
	ActivePlaybacks metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Command
// handling is sub-millisecond; synthesis spans network calls plus playback.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.CommandDuration, err = m.Float64Histogram("chatvox.command.duration",
		metric.WithDescription("Latency of chat command handling."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SynthesisDuration, err = m.Float64Histogram("chatvox.synthesis.duration",
		metric.WithDescription("Latency of speech synthesis and playback."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.CommandsProcessed, err = m.Int64Counter("chatvox.commands.processed",
		metric.WithDescription("Total chat commands handled by command and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("chatvox.provider.errors",
		metric.WithDescription("Total synthesis provider errors by provider."),
	); err != nil {
		return nil, err
	}
	if met.PlaybackDropped, err = m.Int64Counter("chatvox.playback.dropped",
		metric.WithDescription("Speak requests dropped because playback was busy."),
	); err != nil {
		return nil, err
	}

	if met.ActivePlaybacks, err = m.Int64UpDownCounter("chatvox.active_playbacks",
		metric.WithDescription("Number of in-flight synthesis/playback operations."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordCommand records one handled command with its outcome status and
// handling duration in seconds.
func (m *Metrics) RecordCommand(ctx context.Context, command, status string, seconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("status", status),
	)
	m.CommandsProcessed.Add(ctx, 1, attrs)
	m.CommandDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("command", command)))
}

// RecordProviderError records one synthesis provider error.
func (m *Metrics) RecordProviderError(ctx context.Context, provider string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordSynthesis records one completed synthesis/playback with its duration
// in seconds.
func (m *Metrics) RecordSynthesis(ctx context.Context, provider string, seconds float64) {
	m.SynthesisDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("provider", provider)))
}
