package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records intake funnel events through an OpenTelemetry meter
// exported on the default prometheus registry.
type Observability struct {
	meterProvider *metric.MeterProvider
	eventCounter  otelmetric.Int64Counter
	stepReached   otelmetric.Int64Histogram
	sinkLatency   otelmetric.Float64Histogram
}

func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	obs, err := newWithMeter(provider.Meter(serviceName))
	if err != nil {
		return nil, err
	}
	obs.meterProvider = provider
	return obs, nil
}

// NewWithMeter is used when the caller owns the provider (tests use a manual reader).
func NewWithMeter(meter otelmetric.Meter) (*Observability, error) {
	return newWithMeter(meter)
}

func newWithMeter(meter otelmetric.Meter) (*Observability, error) {
	eventCounter, err := meter.Int64Counter(
		"intake.events",
		otelmetric.WithDescription("Intake tracking events by type"),
	)
	if err != nil {
		return nil, err
	}

	stepReached, err := meter.Int64Histogram(
		"intake.step.reached",
		otelmetric.WithDescription("Step index reached on step change"),
	)
	if err != nil {
		return nil, err
	}

	sinkLatency, err := meter.Float64Histogram(
		"intake.sink.latency",
		otelmetric.WithDescription("Tracking sink delivery latency"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		eventCounter: eventCounter,
		stepReached:  stepReached,
		sinkLatency:  sinkLatency,
	}, nil
}

func (o *Observability) RecordEvent(ctx context.Context, eventType, marketType, targetMarket string) {
	o.eventCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("type", eventType),
		attribute.String("market_type", marketType),
		attribute.String("target_market", targetMarket),
	))
}

func (o *Observability) RecordStep(ctx context.Context, marketType string, step int) {
	o.stepReached.Record(ctx, int64(step), otelmetric.WithAttributes(
		attribute.String("market_type", marketType),
	))
}

func (o *Observability) RecordSinkLatency(ctx context.Context, sink string, d time.Duration, failed bool) {
	o.sinkLatency.Record(ctx, float64(d.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("sink", sink),
		attribute.Bool("failed", failed),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
