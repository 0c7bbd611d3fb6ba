package pipe

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/ib-77/middlewarify/pkg/midd"
	"github.com/ib-77/middlewarify/pkg/midd/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *orderLog) push(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, s)
}

func (l *orderLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func (l *orderLog) handler(name string) func(ctx context.Context, args ...any) error {
	return func(ctx context.Context, args ...any) error {
		l.push(name)
		return nil
	}
}

func quiet() []Option {
	return []Option{WithLogger(slog.New(slog.DiscardHandler)), WithoutTelemetry()}
}

func TestScenario_UseModeOrder(t *testing.T) {
	log := &orderLog{}
	p := NewUse(func(ctx context.Context, args ...any) (int, error) {
		log.push("main")
		return 42, nil
	}, quiet()...)
	p.Use(log.handler("h1"))
	p.Use(log.handler("h2"))

	res := <-p.Invoke(context.Background())
	require.True(t, res.IsSuccess(), "%v", res.Err())
	assert.Equal(t, 42, res.Result())
	assert.Equal(t, []string{"h1", "h2", "main"}, log.get())
}

func TestScenario_AfterHandlerSeesMainValue(t *testing.T) {
	var observed any
	p := NewHooks(func(ctx context.Context, args ...any) (string, error) {
		return "X", nil
	}, quiet()...)
	p.After(func(ctx context.Context, args ...any) (any, error) {
		observed = args[len(args)-1]
		return "not X", nil
	})

	v, err := p.Call(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "X", v)
	assert.Equal(t, "X", observed)
}

func TestScenario_FailureStopsPipeline(t *testing.T) {
	log := &orderLog{}
	e := errors.New("E")

	p := NewUse(func(ctx context.Context, args ...any) (int, error) {
		log.push("main")
		return 1, nil
	}, quiet()...)
	p.Use(
		log.handler("h1"),
		func(ctx context.Context, args ...any) error {
			log.push("h2")
			return e
		},
		log.handler("h3"),
	)

	res := <-p.Invoke(context.Background())
	assert.False(t, res.IsSuccess())
	assert.Same(t, e, res.Err())
	assert.Equal(t, []string{"h1", "h2"}, log.get())
}

func TestScenario_NoMainHandler(t *testing.T) {
	p := New[any](nil, Config{BeforeAfter: true}, quiet()...)

	res := <-p.Invoke(context.Background(), "ignored")
	require.True(t, res.IsSuccess())
	assert.Nil(t, res.Result())
	assert.Equal(t, midd.ModeBeforeAfter, p.Mode())
}

func TestScenario_NoMainHandlerTypedZero(t *testing.T) {
	p := NewUse[int](nil, quiet()...)

	v, err := p.Call(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestScenario_FlattenOneLevel(t *testing.T) {
	log := &orderLog{}
	p := NewUse(func(ctx context.Context, args ...any) (int, error) {
		log.push("main")
		return 0, nil
	}, quiet()...)
	p.Use(log.handler("fn1"), []any{log.handler("fn2"), log.handler("fn3")})

	_, err := p.Call(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fn1", "fn2", "fn3", "main"}, log.get())
}

func TestUse_DropsNonCallables(t *testing.T) {
	log := &orderLog{}
	p := NewUse[struct{}](nil, quiet()...)
	p.Use([]any{log.handler("fnA"), "not a function", log.handler("fnB")})

	_, err := p.Call(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fnA", "fnB"}, log.get())
}

func TestBeforeAfterOrder(t *testing.T) {
	log := &orderLog{}
	p := NewHooks(func(ctx context.Context, args ...any) (bool, error) {
		log.push("main")
		return true, nil
	}, quiet()...)
	p.Before(log.handler("b1"), log.handler("b2"))
	p.After(log.handler("a1"))
	p.After(log.handler("a2"))

	v, err := p.Call(context.Background())
	require.NoError(t, err)
	assert.True(t, v)
	assert.Equal(t, []string{"b1", "b2", "main", "a1", "a2"}, log.get())
}

func TestNew_SelectsMode(t *testing.T) {
	use := New[int](nil, Config{}, quiet()...)
	_, ok := use.(*UsePipeline[int])
	assert.True(t, ok)
	assert.Equal(t, midd.ModeUse, use.Mode())

	hooks := New[int](nil, Config{BeforeAfter: true}, quiet()...)
	_, ok = hooks.(*HookPipeline[int])
	assert.True(t, ok)
}

func TestRegistrationDuringInvocation(t *testing.T) {
	log := &orderLog{}
	entered := make(chan struct{})
	release := make(chan struct{})

	p := NewUse(func(ctx context.Context, args ...any) (int, error) {
		log.push("main")
		return len(args), nil
	}, quiet()...)
	p.Use(func(ctx context.Context, args ...any) error {
		log.push("h1")
		if args[0] == "first" {
			close(entered)
			<-release
		}
		return nil
	})

	first := p.Invoke(context.Background(), "first")
	<-entered
	p.Use(log.handler("late"))
	close(release)

	res := <-first
	require.True(t, res.IsSuccess())
	assert.Equal(t, []string{"h1", "main"}, log.get())

	_, err := p.Call(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, []string{"h1", "main", "h1", "late", "main"}, log.get())
}

func TestHandlerPanicFailsInvocation(t *testing.T) {
	p := NewHooks(func(ctx context.Context, args ...any) (int, error) {
		panic(errors.New("bad state"))
	}, quiet()...)

	_, err := p.Call(context.Background())
	var pe *midd.PanicError
	require.ErrorAs(t, err, &pe)
	assert.EqualError(t, errors.Unwrap(err), "bad state")
}

func TestTransitionHook(t *testing.T) {
	var mu sync.Mutex
	var terminal []engine.State

	p := NewUse(func(ctx context.Context, args ...any) (int, error) { return 1, nil },
		append(quiet(), WithTransitionHook(func(ctx context.Context, tr engine.Transition) {
			if tr.State.IsTerminal() {
				mu.Lock()
				terminal = append(terminal, tr.State)
				mu.Unlock()
			}
		}))...)

	_, err := p.Call(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []engine.State{engine.StateSucceeded}, terminal)
}

func TestCast(t *testing.T) {
	v, err := cast[int](3).Get()
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = cast[int]("three").Get()
	assert.ErrorIs(t, err, midd.ErrResultType)

	var e error
	res := cast[error](nil)
	assert.True(t, res.IsSuccess())
	assert.Equal(t, e, res.Result())
}

func TestUse_AcceptsTypedMain(t *testing.T) {
	log := &orderLog{}
	audit := Main[string](func(ctx context.Context, args ...any) (string, error) {
		log.push("audit")
		return "audited", nil
	})

	p := NewUse(func(ctx context.Context, args ...any) (int, error) {
		log.push("main")
		return 7, nil
	}, quiet()...)
	p.Use(audit, []Main[string]{audit})

	v, err := p.Call(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, []string{"audit", "audit", "main"}, log.get())
}
