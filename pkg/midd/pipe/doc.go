// Package pipe exposes typed handles over a binding and the engine.
//
// A handle is created once per operation, with an optional main handler and
// a Config selecting the mode:
//
//	p := pipe.NewUse(func(ctx context.Context, args ...any) (int, error) {
//		return 42, nil
//	})
//	p.Use(authorize, []any{validate, audit})
//	v, err := p.Call(ctx, req)
//
// UsePipeline runs its use-handlers then the main handler. HookPipeline runs
// before-handlers, the main handler, then after-handlers; after-handlers get
// the main handler's value as their last argument. Either way the outcome is
// the main handler's value, or the first handler error.
//
// Handlers may be registered at any time. Each Invoke works on a snapshot
// taken when it starts, so registrations made while it runs only affect
// later invocations.
package pipe
