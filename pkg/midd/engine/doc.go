// Package engine runs a snapshot of handlers against one set of call
// arguments.
//
// Handlers run strictly in order, each settling before the next starts.
// When the main handler settles its value is stored and appended to the
// arguments of every handler after it. The first failure aborts the run and
// is returned unchanged. A successful run resolves with the main handler's
// value, whatever the after-handlers return.
//
// There is no cancellation: ctx is passed to handlers for values (logger,
// trace span) and is never watched by the engine.
package engine
