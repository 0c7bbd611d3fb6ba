package midd

import (
	"context"
	"errors"
	"reflect"
)

var (
	// ErrUnsettled is returned when an async handler closes its channel
	// without delivering an outcome.
	ErrUnsettled = errors.New("handler closed without an outcome")
	// ErrResultType is returned when a main handler result cannot be
	// converted to the pipeline's result type.
	ErrResultType = errors.New("main handler result has unexpected type")
)

// Handler is one step of a pipeline. It receives the invocation's current
// arguments; handlers placed after the main handler get its result appended
// as the last argument.
type Handler func(ctx context.Context, args ...any) (any, error)

// AsyncHandler settles later by sending one Result on the returned channel.
type AsyncHandler func(ctx context.Context, args ...any) <-chan Result[any]

// Noop is the main handler used when none is supplied. It settles with nil.
func Noop(context.Context, ...any) (any, error) {
	return nil, nil
}

// Role tags an entry of a snapshot.
type Role int

const (
	RoleMiddleware Role = iota
	RoleMain
)

func (r Role) String() string {
	switch r {
	case RoleMain:
		return "main"
	case RoleMiddleware:
		return "middleware"
	default:
		return "unknown"
	}
}

// Entry pairs a handler with its role so the callable itself is never tagged.
type Entry struct {
	Role Role
	Fn   Handler
}

func (e Entry) IsMain() bool {
	return e.Role == RoleMain
}

func Main(fn Handler) Entry {
	if fn == nil {
		fn = Noop
	}
	return Entry{Role: RoleMain, Fn: fn}
}

func Middleware(fn Handler) Entry {
	return Entry{Role: RoleMiddleware, Fn: fn}
}

// Mode selects which handler lists a pipeline exposes.
type Mode int

const (
	ModeUse Mode = iota
	ModeBeforeAfter
)

func (m Mode) String() string {
	if m == ModeBeforeAfter {
		return "before_after"
	}
	return "use"
}

// Kind names the list a handler is registered into.
type Kind string

const (
	KindBefore Kind = "before"
	KindAfter  Kind = "after"
	KindUse    Kind = "use"
)

// AsHandler converts the callable shapes accepted at registration into a
// Handler. Besides the listed shapes, any func(context.Context, ...any)
// returning (V, error) or error is accepted, whatever V is. ok is false for
// anything else, including nil funcs.
func AsHandler(v any) (h Handler, ok bool) {
	if IsNil(v) {
		return nil, false
	}

	switch fn := v.(type) {
	case Handler:
		return fn, true
	case func(context.Context, ...any) (any, error):
		return fn, true
	case func(context.Context, ...any) error:
		return func(ctx context.Context, args ...any) (any, error) {
			return nil, fn(ctx, args...)
		}, true
	case AsyncHandler:
		return FromAsync(fn), true
	case func(context.Context, ...any) <-chan Result[any]:
		return FromAsync(fn), true
	default:
		return reflectHandler(v)
	}
}

var (
	contextType = reflect.TypeFor[context.Context]()
	argsType    = reflect.TypeFor[[]any]()
	errorType   = reflect.TypeFor[error]()
)

// reflectHandler adapts handlers with a typed value, such as
// func(ctx, ...any) (string, error).
func reflectHandler(v any) (Handler, bool) {
	fv := reflect.ValueOf(v)
	ft := fv.Type()
	if ft.Kind() != reflect.Func || !ft.IsVariadic() || ft.NumIn() != 2 ||
		ft.In(0) != contextType || ft.In(1) != argsType {
		return nil, false
	}

	switch {
	case ft.NumOut() == 1 && ft.Out(0) == errorType:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return nil, false
	}

	return func(ctx context.Context, args ...any) (any, error) {
		out := fv.CallSlice([]reflect.Value{reflect.ValueOf(&ctx).Elem(), reflect.ValueOf(args)})

		var err error
		if errV := out[len(out)-1]; !errV.IsNil() {
			err = errV.Interface().(error)
		}
		if len(out) == 1 {
			return nil, err
		}
		return out[0].Interface(), err
	}, true
}

// Elements returns the items of a slice or array. ok is false for any other
// value.
func Elements(v any) (items []any, ok bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	items = make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// FromAsync waits for an AsyncHandler to settle. A nil channel never
// settles and fails with ErrUnsettled.
func FromAsync(fn AsyncHandler) Handler {
	return func(ctx context.Context, args ...any) (any, error) {
		out := fn(ctx, args...)
		if out == nil {
			return nil, ErrUnsettled
		}
		res, ok := <-out
		if !ok {
			return nil, ErrUnsettled
		}
		if res.IsSuccess() {
			return res.Result(), nil
		}
		if res.Err() == nil {
			return nil, ErrUnsettled
		}
		return nil, res.Err()
	}
}
