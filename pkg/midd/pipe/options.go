package pipe

import (
	"context"
	"log/slog"

	"github.com/ib-77/middlewarify/pkg/midd/engine"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Config is the only configuration recognized when a pipeline is created.
type Config struct {
	// BeforeAfter selects before/after hooks instead of use handlers.
	BeforeAfter bool
}

type Option func(*options)

type options struct {
	name           string
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	noTelemetry    bool
	onTransition   func(ctx context.Context, t engine.Transition)
}

// WithName labels logs, spans and metrics of the pipeline.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithoutTelemetry skips span and metric recording entirely.
func WithoutTelemetry() Option {
	return func(o *options) {
		o.noTelemetry = true
	}
}

// WithTransitionHook observes every invocation state change.
func WithTransitionHook(hook func(ctx context.Context, t engine.Transition)) Option {
	return func(o *options) {
		o.onTransition = hook
	}
}

func buildOptions(opts []Option) options {
	o := options{name: "pipeline"}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
