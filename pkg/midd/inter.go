package midd

import "time"

type ResultProvider[T any] interface {
	// Result returns the main handler's value
	Result() T
	// CreatedAt time of settlement (UTC)
	CreatedAt() time.Time
}

// Outcome defines an interface for a settled invocation
type Outcome[T any] interface {
	ResultProvider[T]
	// Err returns the handler failure, if any
	Err() error
	// IsSuccess returns true if every handler settled without error
	IsSuccess() bool
}

var _ Outcome[int] = Result[int]{}
