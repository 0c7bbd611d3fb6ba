package binding

import (
	"log/slog"
	"sync"

	"github.com/ib-77/middlewarify/pkg/midd"
)

type Binding struct {
	mu     sync.RWMutex
	main   midd.Entry
	mode   midd.Mode
	before []midd.Handler
	after  []midd.Handler
	use    []midd.Handler
	logger *slog.Logger
}

// New creates a Binding. A nil main handler is replaced with midd.Noop.
func New(main midd.Handler, mode midd.Mode, logger *slog.Logger) *Binding {
	if logger == nil {
		logger = slog.Default()
	}
	return &Binding{
		main:   midd.Main(main),
		mode:   mode,
		logger: logger,
	}
}

func (b *Binding) Mode() midd.Mode {
	return b.mode
}

// Register appends handlers to the list named by kind. Each argument is a
// callable or a slice or array of callables of any element type; lists are
// flattened one level only. Anything else is dropped.
func (b *Binding) Register(kind midd.Kind, handlers ...any) {
	if len(handlers) == 0 {
		return
	}

	accepted := make([]midd.Handler, 0, len(handlers))
	dropped := 0

	for _, h := range handlers {
		items, isList := midd.Elements(h)
		if !isList {
			items = []any{h}
		}

		// items of a list are not flattened again
		for _, v := range items {
			if fn, ok := midd.AsHandler(v); ok {
				accepted = append(accepted, fn)
			} else {
				dropped++
			}
		}
	}

	if dropped > 0 {
		b.logger.Debug("dropped non-callable handlers", "kind", string(kind), "dropped", dropped)
	}
	if len(accepted) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch kind {
	case midd.KindBefore:
		b.before = append(b.before, accepted...)
	case midd.KindAfter:
		b.after = append(b.after, accepted...)
	case midd.KindUse:
		b.use = append(b.use, accepted...)
	default:
		b.logger.Debug("dropped handlers for unknown kind", "kind", string(kind), "count", len(accepted))
	}
}

// Snapshot returns the sequence one invocation runs. The returned slice is
// owned by the caller.
func (b *Binding) Snapshot() []midd.Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.mode == midd.ModeBeforeAfter {
		seq := make([]midd.Entry, 0, len(b.before)+1+len(b.after))
		seq = appendMiddleware(seq, b.before)
		seq = append(seq, b.main)
		return appendMiddleware(seq, b.after)
	}

	seq := make([]midd.Entry, 0, len(b.use)+1)
	seq = appendMiddleware(seq, b.use)
	return append(seq, b.main)
}

// Len reports how many handlers are registered under kind.
func (b *Binding) Len(kind midd.Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	switch kind {
	case midd.KindBefore:
		return len(b.before)
	case midd.KindAfter:
		return len(b.after)
	case midd.KindUse:
		return len(b.use)
	}
	return 0
}

func appendMiddleware(seq []midd.Entry, handlers []midd.Handler) []midd.Entry {
	for _, fn := range handlers {
		seq = append(seq, midd.Middleware(fn))
	}
	return seq
}
