// Package midd holds the types shared by the pipeline packages: Handler and
// its tagged Entry, the Mode and Kind enums, and Result, the settled outcome
// of an invocation.
//
// Subpackages:
// - binding: the handler lists of one operation, registration and snapshots
// - engine: runs a snapshot one handler at a time
// - pipe: typed handles exposing Invoke and Use or Before/After
// - core: channel helpers and per-call options carried in context
// - telemetry: OpenTelemetry spans and metrics for invocations
package midd
