package diag

// Severity represents the severity level of a diagnostic issue.
//
// Severity is an ordered enumeration where lower numeric values are more
// severe. Use the comparison methods rather than raw numeric comparisons
// for clarity.
type Severity uint8

const (
	// Fatal indicates an unrecoverable condition: a runtime-invariant
	// violation (§7.3) that aborts the live query into the error state.
	Fatal Severity = iota

	// Error indicates a condition that prevents the operation from
	// succeeding but does not corrupt engine state (most compilation
	// errors, §7.2).
	Error

	// Warning indicates a condition the caller should address but that
	// does not block the operation (e.g. a deoptimized lazy join).
	Warning

	// Info provides informational diagnostics requiring no action.
	Info

	// Hint provides suggestions for improvement (e.g. "add an index on
	// this field to enable order-by-by-index optimization").
	Hint
)

// String returns the canonical lowercase label for the severity.
func (s Severity) String() string {
	switch s {
	case Fatal:
		return "fatal"
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// AtLeastAsSevereAs reports whether s is at least as severe as other
// (lower numeric value means more severe).
func (s Severity) AtLeastAsSevereAs(other Severity) bool {
	return s <= other
}
