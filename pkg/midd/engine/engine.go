package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ib-77/middlewarify/pkg/midd"
	"github.com/ib-77/middlewarify/pkg/midd/core"
	"github.com/ib-77/middlewarify/pkg/midd/telemetry"
)

// Transition is reported to Config.OnTransition on every state change.
// Step is the index of the handler being run, or -1.
type Transition struct {
	ID    uuid.UUID
	State State
	Step  int
	Err   error
}

type Config struct {
	Name         string
	Logger       *slog.Logger
	Telemetry    *telemetry.Instruments
	OnTransition func(ctx context.Context, t Transition)
}

type Engine struct {
	name         string
	logger       *slog.Logger
	telemetry    *telemetry.Instruments
	onTransition func(ctx context.Context, t Transition)
}

func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		name:         cfg.Name,
		logger:       logger,
		telemetry:    cfg.Telemetry,
		onTransition: cfg.OnTransition,
	}
}

var defaultEngine = New(Config{})

// Run executes seq with the default engine.
func Run(ctx context.Context, seq []midd.Entry, args []any) <-chan midd.Result[any] {
	return defaultEngine.Run(ctx, seq, args)
}

// Exec executes seq with the default engine and waits for the outcome.
func Exec(ctx context.Context, seq []midd.Entry, args []any) (any, error) {
	return defaultEngine.Exec(ctx, seq, args)
}

// Run starts the invocation in its own goroutine. The returned channel
// receives exactly one Result and is then closed.
func (e *Engine) Run(ctx context.Context, seq []midd.Entry, args []any) <-chan midd.Result[any] {
	return core.Settle(func() (any, error) {
		return e.Exec(ctx, seq, args)
	})
}

// Exec runs seq on the calling goroutine.
func (e *Engine) Exec(ctx context.Context, seq []midd.Entry, args []any) (any, error) {
	inv := newInvocation(seq, args)

	info := telemetry.Invocation{ID: inv.id, Pipeline: e.name, Steps: len(seq), Args: -1}
	if core.IsRecordArgsEnabled(ctx, false) {
		info.Args = len(args)
	}

	ctx, span := e.telemetry.StartInvocation(ctx, info)
	logger := e.logger.With("pipeline", e.name, "invocation_id", inv.id.String())
	ctx = core.WithLogger(ctx, logger)
	start := time.Now()

	e.notify(ctx, Transition{ID: inv.id, State: StatePending, Step: -1})

	for i, entry := range inv.seq {
		e.notify(ctx, Transition{ID: inv.id, State: StateRunning, Step: i})

		v, err := e.step(ctx, logger, i, entry, inv.args)
		if err != nil {
			logger.Debug("invocation failed", "step", i, "role", entry.Role.String(), "error", err)
			e.telemetry.EndInvocation(ctx, span, info, err, time.Since(start))
			e.notify(ctx, Transition{ID: inv.id, State: StateFailed, Step: i, Err: err})
			return nil, err
		}

		if entry.IsMain() {
			inv.settleMain(v)
		}
	}

	logger.Debug("invocation succeeded", "steps", len(inv.seq))
	e.telemetry.EndInvocation(ctx, span, info, nil, time.Since(start))
	e.notify(ctx, Transition{ID: inv.id, State: StateSucceeded, Step: -1})
	return inv.mainResult, nil
}

func (e *Engine) step(ctx context.Context, logger *slog.Logger, i int, entry midd.Entry,
	args []any) (any, error) {

	ctx, span := e.telemetry.StartHandler(ctx, i, entry.Role)
	logger.Debug("running handler", "step", i, "role", entry.Role.String(), "args", len(args))

	v, err := try(ctx, entry.Fn, args)

	var pe *midd.PanicError
	if errors.As(err, &pe) {
		logger.Warn("handler panicked", "step", i, "role", entry.Role.String(), "panic", pe.Value)
	}

	e.telemetry.EndHandler(ctx, span, e.name, entry.Role, err)
	return v, err
}

func (e *Engine) notify(ctx context.Context, t Transition) {
	if e.onTransition != nil {
		e.onTransition(ctx, t)
	}
}

// try calls fn and turns a panic into a failure.
func try(ctx context.Context, fn midd.Handler, args []any) (v any, err error) {
	if fn == nil {
		fn = midd.Noop
	}

	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = midd.NewPanicError(r)
		}
	}()

	return fn(ctx, args...)
}
