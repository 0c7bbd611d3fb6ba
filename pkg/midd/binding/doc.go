// Package binding keeps the handler lists of one operation.
//
// A Binding owns the main handler, the mode, and the ordered lists handlers
// are appended to. Register validates and flattens what it is given;
// Snapshot copies the lists into the sequence one invocation runs.
//
// Lists only grow. Snapshot and Register may be called concurrently: a
// snapshot sees every handler registered before it and none registered
// after.
package binding
