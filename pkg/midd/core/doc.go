// Package core contains invocation plumbing shared by engine and pipe:
// single-outcome channels and per-call options carried in context.Context.
// It does not sequence handlers itself.
package core
