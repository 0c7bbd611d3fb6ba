// Package telemetry records OpenTelemetry spans and metrics for pipeline
// invocations. A nil *Instruments is valid and records nothing.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ib-77/middlewarify/pkg/midd"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/ib-77/middlewarify"

const (
	InvokeSpanName  = "midd.invoke"
	HandlerSpanName = "midd.handler"

	InvocationsMetric     = "midd.invocations"
	HandlerFailuresMetric = "midd.handler.failures"
	DurationMetric        = "midd.invocation.duration"
)

type Instruments struct {
	tracer          trace.Tracer
	invocations     metric.Int64Counter
	handlerFailures metric.Int64Counter
	duration        metric.Float64Histogram
}

// New builds instruments from the given providers. Nil providers fall back to
// the global otel providers.
func New(tp trace.TracerProvider, mp metric.MeterProvider) (*Instruments, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	meter := mp.Meter(instrumentationName)
	inst := &Instruments{tracer: tp.Tracer(instrumentationName)}

	var err error
	inst.invocations, err = meter.Int64Counter(
		InvocationsMetric,
		metric.WithDescription("Pipeline invocations partitioned by outcome"),
		metric.WithUnit("{count}"),
	)
	if err != nil {
		return nil, err
	}

	inst.handlerFailures, err = meter.Int64Counter(
		HandlerFailuresMetric,
		metric.WithDescription("Handlers that failed and aborted an invocation"),
		metric.WithUnit("{count}"),
	)
	if err != nil {
		return nil, err
	}

	inst.duration, err = meter.Float64Histogram(
		DurationMetric,
		metric.WithDescription("Wall time from snapshot to settled outcome"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return inst, nil
}

// Invocation describes one run for span and metric attributes.
type Invocation struct {
	ID       uuid.UUID
	Pipeline string
	Steps    int
	Args     int // negative when args are not recorded
}

func (i Invocation) attrs() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("midd.pipeline", i.Pipeline),
		attribute.String("midd.invocation.id", i.ID.String()),
		attribute.Int("midd.steps", i.Steps),
	}
	if i.Args >= 0 {
		attrs = append(attrs, attribute.Int("midd.args", i.Args))
	}
	return attrs
}

func (in *Instruments) StartInvocation(ctx context.Context, inv Invocation) (context.Context, trace.Span) {
	if in == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return in.tracer.Start(ctx, InvokeSpanName, trace.WithAttributes(inv.attrs()...))
}

func (in *Instruments) EndInvocation(ctx context.Context, span trace.Span, inv Invocation, err error, elapsed time.Duration) {
	if in == nil {
		return
	}

	outcome := "success"
	if err != nil {
		outcome = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	attrs := metric.WithAttributes(
		attribute.String("midd.pipeline", inv.Pipeline),
		attribute.String("midd.outcome", outcome),
	)
	in.invocations.Add(ctx, 1, attrs)
	in.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
}

func (in *Instruments) StartHandler(ctx context.Context, index int, role midd.Role) (context.Context, trace.Span) {
	if in == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return in.tracer.Start(ctx, HandlerSpanName, trace.WithAttributes(
		attribute.Int("midd.handler.index", index),
		attribute.String("midd.handler.role", role.String()),
	))
}

func (in *Instruments) EndHandler(ctx context.Context, span trace.Span, pipeline string, role midd.Role, err error) {
	if in == nil {
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		in.handlerFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("midd.pipeline", pipeline),
			attribute.String("midd.handler.role", role.String()),
		))
	}
	span.End()
}
