// Package trace provides optional debug logging helpers for the engine.
//
// This package is an internal utility for developer observability. It is
// distinct from [diag.Result] (user-facing content issues) and error
// returns (system failures).
//
// # Internal Package
//
// This package is internal to the module and is not importable by
// external consumers per Go's internal/ package semantics. It is used for
// coordination across library packages (dataflow, eval, txscope, coordinator).
//
// # Design Principles
//
//   - Near-zero cost when disabled: when the logger is nil, overhead is a
//     single nil check (~2ns); when non-nil but the level is disabled,
//     overhead adds a level test (~3-4ns). Lazy variants guarantee no
//     allocation from attribute construction when disabled.
//   - Stdlib only: uses [log/slog] (Go 1.21+), preserving dependency hygiene.
//   - Logger injection: loggers are passed via options at API boundaries,
//     never stored in globals or read from environment variables.
//
// # Separation of Concerns
//
//   - [diag.Result]: user-facing content issues (compile errors, runtime
//     invariant violations). Structured diagnostics with error codes.
//   - error returns: system failures (nil arguments, impossible states).
//   - trace logging: developer observability (operator scheduling order,
//     join-plan decisions, scheduler flush sequencing). This package.
//
// # Usage Patterns
//
//   - [Begin]/[Op.End]: operation boundaries, with automatic duration
//     measurement.
//   - [Debug], [Info], [Warn], [Error]: simple, pre-computed attributes.
//   - [DebugLazy], [InfoLazy], [WarnLazy], [ErrorLazy]: computed
//     attributes; the function argument is not called when disabled.
//   - [Enabled]: for complex control flow or multiple log calls at
//     different levels.
//
// # Operation Names
//
// Operation names follow the format ivm.<package>.<operation>:
//   - ivm.dataflow.run
//   - ivm.eval.expr
//   - ivm.txscope.flush
//   - ivm.coordinator.gc_sweep
//
// Operation names are implementation details and may change without notice.
package trace
