package engine

import (
	"github.com/google/uuid"
	"github.com/ib-77/middlewarify/pkg/midd"
)

// invocation is the state of one run. It is never shared between runs.
type invocation struct {
	id         uuid.UUID
	seq        []midd.Entry
	args       []any
	mainResult any
}

func newInvocation(seq []midd.Entry, args []any) *invocation {
	own := make([]any, len(args), len(args)+1)
	copy(own, args)

	return &invocation{
		id:   uuid.New(),
		seq:  seq,
		args: own,
	}
}

// settleMain stores the main result and threads it to later handlers.
func (inv *invocation) settleMain(v any) {
	inv.mainResult = v
	inv.args = append(inv.args, v)
}

