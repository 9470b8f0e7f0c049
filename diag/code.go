package diag

// CodeCategory represents the error-taxonomy kind (§7) a diagnostic
// belongs to, not the API layer that happened to emit it.
type CodeCategory uint8

const (
	// CategorySentinel is for cross-cutting codes like E_LIMIT_REACHED
	// and E_INTERNAL that do not belong to a single taxonomy kind.
	CategorySentinel CodeCategory = iota

	// CategoryConfiguration covers §7.1: missing required field, schema
	// violation, invalid status transition.
	CategoryConfiguration

	// CategoryCompilation covers §7.2: unknown expression, invalid join,
	// unsupported type, empty reference path, aggregate misuse.
	CategoryCompilation

	// CategoryRuntimeInvariant covers §7.3: hybrid index invariant
	// violations, a compiled alias with no input stream, a missing
	// lazy-load callback. These abort the live query into error.
	CategoryRuntimeInvariant

	// CategoryDownstream covers §7.4: a source collection entering
	// error, or manual cleanup of a live dependency.
	CategoryDownstream

	// CategoryAsyncLoad covers §7.5: loadSubset rejection.
	CategoryAsyncLoad

	// CategorySyncCleanup covers §7.6: cleanup failures wrapped with the
	// collection id and rethrown on the next scheduler tick.
	CategorySyncCleanup
)

// String returns a human-readable label for the category.
func (c CodeCategory) String() string {
	switch c {
	case CategorySentinel:
		return "sentinel"
	case CategoryConfiguration:
		return "configuration"
	case CategoryCompilation:
		return "compilation"
	case CategoryRuntimeInvariant:
		return "runtime-invariant"
	case CategoryDownstream:
		return "downstream"
	case CategoryAsyncLoad:
		return "async-load"
	case CategorySyncCleanup:
		return "sync-cleanup"
	default:
		return "unknown"
	}
}

// Code is a stable programmatic identifier for an Issue.
//
// Code.String() values are globally unique across all categories; the
// CodeCategory is informational metadata for filtering and grouping.
// The unexported value field enforces a closed set: callers cannot
// construct arbitrary codes, only use the ones this package defines.
type Code struct {
	value string
	cat   CodeCategory
}

// String returns the code's string representation (e.g. "E_COMPILE_UNKNOWN_EXPR").
func (c Code) String() string {
	return c.value
}

// Category returns the programmatic category for this code.
func (c Code) Category() CodeCategory {
	return c.cat
}

// IsZero reports whether the code is unset.
func (c Code) IsZero() bool {
	return c.value == ""
}

func code(value string, cat CodeCategory) Code {
	return Code{value: value, cat: cat}
}

// Sentinel codes.
var (
	// ELimitReached is a sentinel code for explicit diagnostic-limit
	// notification; callers may inject it manually via Collector.Collect,
	// mirroring the teacher's E_LIMIT_REACHED.
	ELimitReached = code("E_LIMIT_REACHED", CategorySentinel)

	// EInternal indicates an unexpected invariant failure that is a
	// programming bug, not a data condition.
	EInternal = code("E_INTERNAL", CategorySentinel)
)

// Configuration codes (§7.1).
var (
	EConfigMissingField      = code("E_CONFIG_MISSING_FIELD", CategoryConfiguration)
	EConfigSchemaViolation   = code("E_CONFIG_SCHEMA_VIOLATION", CategoryConfiguration)
	EConfigInvalidTransition = code("E_CONFIG_INVALID_TRANSITION", CategoryConfiguration)
)

// Compilation codes (§4.4 "Error conditions", §7.2).
var (
	EUnknownExpression     = code("E_COMPILE_UNKNOWN_EXPR", CategoryCompilation)
	ESelfJoinSameAlias     = code("E_COMPILE_SELF_JOIN_SAME_ALIAS", CategoryCompilation)
	EJoinNotEquatingAlias  = code("E_COMPILE_JOIN_NOT_EQUATING", CategoryCompilation)
	EDistinctWithoutSelect = code("E_COMPILE_DISTINCT_WITHOUT_SELECT", CategoryCompilation)
	EHavingWithoutGroupBy  = code("E_COMPILE_HAVING_WITHOUT_GROUPBY", CategoryCompilation)
	ELimitWithoutOrderBy   = code("E_COMPILE_LIMIT_WITHOUT_ORDERBY", CategoryCompilation)
	EAggregateOutsideGroup = code("E_COMPILE_AGGREGATE_OUTSIDE_GROUPBY", CategoryCompilation)
	EAliasUnresolved       = code("E_COMPILE_ALIAS_UNRESOLVED", CategoryCompilation)
	EEmptyReferencePath    = code("E_COMPILE_EMPTY_REF_PATH", CategoryCompilation)
	EUnsupportedType       = code("E_COMPILE_UNSUPPORTED_TYPE", CategoryCompilation)
)

// Runtime-invariant codes (§7.3).
var (
	EIndexKeyInBothTables = code("E_RUNTIME_INDEX_KEY_IN_BOTH_TABLES", CategoryRuntimeInvariant)
	EAliasNoInputStream   = code("E_RUNTIME_ALIAS_NO_INPUT_STREAM", CategoryRuntimeInvariant)
	EMissingLazyCallback  = code("E_RUNTIME_MISSING_LAZY_CALLBACK", CategoryRuntimeInvariant)
	EGraphFinalized       = code("E_RUNTIME_GRAPH_FINALIZED", CategoryRuntimeInvariant)
)

// Downstream-failure codes (§7.4).
var (
	ESourceEnteredError  = code("E_DOWNSTREAM_SOURCE_ERROR", CategoryDownstream)
	ESourceCleanedUp     = code("E_DOWNSTREAM_SOURCE_CLEANED_UP", CategoryDownstream)
	EInvalidStatusChange = code("E_DOWNSTREAM_INVALID_STATUS_CHANGE", CategoryDownstream)
)

// Async-load codes (§7.5).
var (
	ELoadSubsetRejected = code("E_ASYNC_LOAD_SUBSET_REJECTED", CategoryAsyncLoad)
)

// Sync-cleanup codes (§7.6).
var (
	ECleanupFailed = code("E_SYNC_CLEANUP_FAILED", CategorySyncCleanup)
)
