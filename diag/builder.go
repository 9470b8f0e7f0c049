package diag

import "fmt"

// IssueBuilder provides fluent construction of [Issue] values.
//
// IssueBuilder is the only valid construction path for Issue values in
// production code.
//
// Example:
//
//	issue := diag.NewIssue(diag.Error, diag.EUnknownExpression, `unknown expression type *foo.Bar`).
//	    WithAlias("c1").
//	    WithHint("check the join condition").
//	    Build()
type IssueBuilder struct {
	issue Issue
}

// NewIssue starts building an issue with required fields.
//
// NewIssue panics if severity is out of range, code is zero, or message is
// empty - these are programmer errors, caught at construction time rather
// than deferred to [Collector.Collect].
func NewIssue(severity Severity, code Code, message string) *IssueBuilder {
	if severity > Hint {
		panic(fmt.Sprintf("diag.NewIssue: invalid severity %d (must be 0-%d)", severity, Hint))
	}
	if code.IsZero() {
		panic("diag.NewIssue: zero code")
	}
	if message == "" {
		panic("diag.NewIssue: empty message")
	}
	return &IssueBuilder{issue: Issue{severity: severity, code: code, message: message}}
}

// WithAlias sets the query alias this issue concerns.
func (b *IssueBuilder) WithAlias(alias string) *IssueBuilder {
	b.issue.alias = alias
	return b
}

// WithHint sets the resolution suggestion.
func (b *IssueBuilder) WithHint(hint string) *IssueBuilder {
	b.issue.hint = hint
	return b
}

// WithCause wraps an internal Go error, used for §7.3 runtime-invariant
// issues where the underlying cause should remain inspectable via
// errors.Is/errors.As.
func (b *IssueBuilder) WithCause(cause error) *IssueBuilder {
	b.issue.cause = cause
	return b
}

// WithDetail adds a single key-value detail. Multiple calls append.
func (b *IssueBuilder) WithDetail(key, value string) *IssueBuilder {
	b.issue.details = append(b.issue.details, Detail{Key: key, Value: value})
	return b
}

// WithDetails adds key-value context. Multiple calls append.
func (b *IssueBuilder) WithDetails(details ...Detail) *IssueBuilder {
	b.issue.details = append(b.issue.details, details...)
	return b
}

// Build returns the constructed issue, deep-copying the details slice into
// a fresh tight-capacity slice so builder reuse cannot mutate a previously
// built issue.
func (b *IssueBuilder) Build() Issue {
	result := b.issue
	if len(b.issue.details) > 0 {
		result.details = make([]Detail, len(b.issue.details))
		copy(result.details, b.issue.details)
	}
	return result
}
