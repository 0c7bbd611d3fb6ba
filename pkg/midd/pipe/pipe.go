package pipe

import (
	"context"
	"fmt"

	"github.com/ib-77/middlewarify/pkg/midd"
	"github.com/ib-77/middlewarify/pkg/midd/binding"
	"github.com/ib-77/middlewarify/pkg/midd/core"
	"github.com/ib-77/middlewarify/pkg/midd/engine"
	"github.com/ib-77/middlewarify/pkg/midd/telemetry"
)

// Main is the handler whose value an invocation resolves with.
type Main[T any] func(ctx context.Context, args ...any) (T, error)

type Pipeline[T any] interface {
	// Invoke runs the pipeline asynchronously. The channel receives exactly
	// one Result and is closed.
	Invoke(ctx context.Context, args ...any) <-chan midd.Result[T]
	// Call runs the pipeline and waits for its outcome.
	Call(ctx context.Context, args ...any) (T, error)
	Mode() midd.Mode
}

var (
	_ Pipeline[any] = (*UsePipeline[any])(nil)
	_ Pipeline[any] = (*HookPipeline[any])(nil)
)

// New returns a *HookPipeline when cfg.BeforeAfter is set and a
// *UsePipeline otherwise. A nil main resolves with T's zero value.
func New[T any](main Main[T], cfg Config, opts ...Option) Pipeline[T] {
	if cfg.BeforeAfter {
		return NewHooks(main, opts...)
	}
	return NewUse(main, opts...)
}

type UsePipeline[T any] struct {
	pipeline[T]
}

func NewUse[T any](main Main[T], opts ...Option) *UsePipeline[T] {
	return &UsePipeline[T]{pipeline: newPipeline(main, midd.ModeUse, opts)}
}

// Use appends handlers that run before the main handler. Each argument is a
// handler or a slice of handlers; see midd.AsHandler for the accepted shapes.
func (p *UsePipeline[T]) Use(handlers ...any) {
	p.binding.Register(midd.KindUse, handlers...)
}

type HookPipeline[T any] struct {
	pipeline[T]
}

func NewHooks[T any](main Main[T], opts ...Option) *HookPipeline[T] {
	return &HookPipeline[T]{pipeline: newPipeline(main, midd.ModeBeforeAfter, opts)}
}

// Before appends handlers that run before the main handler.
func (p *HookPipeline[T]) Before(handlers ...any) {
	p.binding.Register(midd.KindBefore, handlers...)
}

// After appends handlers that run after the main handler and receive its
// value as their last argument.
func (p *HookPipeline[T]) After(handlers ...any) {
	p.binding.Register(midd.KindAfter, handlers...)
}

type pipeline[T any] struct {
	binding *binding.Binding
	engine  *engine.Engine
}

func newPipeline[T any](main Main[T], mode midd.Mode, opts []Option) pipeline[T] {
	o := buildOptions(opts)
	logger := o.logger.With("pipeline", o.name, "mode", mode.String())

	var inst *telemetry.Instruments
	if !o.noTelemetry {
		var err error
		inst, err = telemetry.New(o.tracerProvider, o.meterProvider)
		if err != nil {
			logger.Warn("telemetry disabled", "error", err)
		}
	}

	return pipeline[T]{
		binding: binding.New(mainHandler(main), mode, logger),
		engine: engine.New(engine.Config{
			Name:         o.name,
			Logger:       o.logger,
			Telemetry:    inst,
			OnTransition: o.onTransition,
		}),
	}
}

func (p *pipeline[T]) Invoke(ctx context.Context, args ...any) <-chan midd.Result[T] {
	return core.Convert(p.engine.Run(ctx, p.binding.Snapshot(), args), cast[T])
}

func (p *pipeline[T]) Call(ctx context.Context, args ...any) (T, error) {
	v, err := p.engine.Exec(ctx, p.binding.Snapshot(), args)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](v).Get()
}

func (p *pipeline[T]) Mode() midd.Mode {
	return p.binding.Mode()
}

func mainHandler[T any](main Main[T]) midd.Handler {
	if main == nil {
		return nil
	}
	return func(ctx context.Context, args ...any) (any, error) {
		return main(ctx, args...)
	}
}

func cast[T any](v any) midd.Result[T] {
	if v == nil {
		var zero T
		return midd.Success(zero)
	}
	t, ok := v.(T)
	if !ok {
		return midd.Fail[T](fmt.Errorf("%w: %T", midd.ErrResultType, v))
	}
	return midd.Success(t)
}
