package core

import (
	"github.com/ib-77/middlewarify/pkg/midd"
)

// ToChan returns a closed, buffered channel holding v. Receivers never block
// and the sender never waits for them.
func ToChan[T any](v T) <-chan T {
	out := make(chan T, 1)
	out <- v
	close(out)
	return out
}

// Settle runs f in its own goroutine and delivers exactly one Result on the
// returned channel, then closes it.
func Settle[T any](f func() (T, error)) <-chan midd.Result[T] {
	out := make(chan midd.Result[T], 1)

	go func() {
		defer close(out)

		v, err := f()
		if err != nil {
			out <- midd.Fail[T](err)
			return
		}
		out <- midd.Success(v)
	}()

	return out
}

// Convert maps a single-outcome channel to another result type.
func Convert[In, Out any](in <-chan midd.Result[In],
	onSuccess func(v In) midd.Result[Out]) <-chan midd.Result[Out] {

	out := make(chan midd.Result[Out], 1)

	go func() {
		defer close(out)

		res, ok := <-in
		if !ok {
			out <- midd.Fail[Out](midd.ErrUnsettled)
			return
		}
		if !res.IsSuccess() {
			out <- midd.FailFrom[In, Out](res)
			return
		}
		out <- onSuccess(res.Result())
	}()

	return out
}

// FromChanFirstOrDefault waits for the first value on out, or returns
// defaultV if out is closed empty.
func FromChanFirstOrDefault[T any](out <-chan T, defaultV T) T {
	v, ok := <-out
	if !ok {
		return defaultV
	}
	return v
}

// Await blocks until the outcome settles.
func Await[T any](out <-chan midd.Result[T]) (T, error) {
	return FromChanFirstOrDefault(out, midd.Fail[T](midd.ErrUnsettled)).Get()
}
