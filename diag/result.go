package diag

import (
	"fmt"
	"iter"
	"strings"
)

// SeverityCounts provides counts by severity level without map allocation.
type SeverityCounts struct {
	Fatal    int
	Errors   int
	Warnings int
	Info     int
	Hints    int
}

// Result is an immutable snapshot of diagnostic issues with precomputed
// counts. Results are obtained via [Collector.Result] or [OK] for empty
// success results; there is no public constructor accepting arbitrary
// issues, so every issue in a Result is guaranteed valid.
type Result struct {
	issues       []Issue
	limit        int
	limitReached bool
	droppedCount int

	fatalCount   int
	errorCount   int
	warningCount int
	infoCount    int
	hintCount    int
}

func newResult(issues []Issue, limit int, limitReached bool, droppedCount int) Result {
	var fatal, errs, warn, info, hint int
	for _, issue := range issues {
		switch issue.Severity() {
		case Fatal:
			fatal++
		case Error:
			errs++
		case Warning:
			warn++
		case Info:
			info++
		case Hint:
			hint++
		}
	}
	return Result{
		issues: issues, limit: limit, limitReached: limitReached, droppedCount: droppedCount,
		fatalCount: fatal, errorCount: errs, warningCount: warn, infoCount: info, hintCount: hint,
	}
}

// OK returns a Result representing success (no issues).
func OK() Result {
	return newResult(nil, 0, false, 0)
}

// OK reports whether no Fatal or Error issues are present.
func (r Result) OK() bool { return r.fatalCount == 0 && r.errorCount == 0 }

// HasFatal reports whether any Fatal issue is present.
func (r Result) HasFatal() bool { return r.fatalCount > 0 }

// HasErrors reports whether any Fatal or Error issue is present.
func (r Result) HasErrors() bool { return r.fatalCount > 0 || r.errorCount > 0 }

// HasWarnings reports whether any Warning issue is present.
func (r Result) HasWarnings() bool { return r.warningCount > 0 }

// Len returns the number of issues.
func (r Result) Len() int { return len(r.issues) }

// LimitReached reports whether the collection limit was reached.
func (r Result) LimitReached() bool { return r.limitReached }

// DroppedCount returns how many issues were dropped after hitting the limit.
func (r Result) DroppedCount() int { return r.droppedCount }

// SeverityCounts returns counts by severity level.
func (r Result) SeverityCounts() SeverityCounts {
	return SeverityCounts{
		Fatal: r.fatalCount, Errors: r.errorCount, Warnings: r.warningCount,
		Info: r.infoCount, Hints: r.hintCount,
	}
}

// Issues returns an iterator over all issues without copying.
func (r Result) Issues() iter.Seq[Issue] {
	return func(yield func(Issue) bool) {
		for _, issue := range r.issues {
			if !yield(issue) {
				return
			}
		}
	}
}

// IssuesSlice returns a copy of all issues.
func (r Result) IssuesSlice() []Issue {
	if len(r.issues) == 0 {
		return nil
	}
	out := make([]Issue, len(r.issues))
	copy(out, r.issues)
	return out
}

// Errors returns only Fatal and Error issues.
func (r Result) Errors() []Issue {
	if r.fatalCount+r.errorCount == 0 {
		return nil
	}
	out := make([]Issue, 0, r.fatalCount+r.errorCount)
	for _, issue := range r.issues {
		if issue.Severity() == Fatal || issue.Severity() == Error {
			out = append(out, issue)
		}
	}
	return out
}

// Messages returns message strings from Fatal and Error issues.
func (r Result) Messages() []string {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, issue := range errs {
		out[i] = issue.Message()
	}
	return out
}

// String returns a minimal multi-line representation suitable for quick
// debugging; "OK" when OK() is true regardless of warnings/hints.
func (r Result) String() string {
	if r.OK() {
		return "OK"
	}
	var sb strings.Builder
	counts := r.SeverityCounts()
	fmt.Fprintf(&sb, "%d error(s)", counts.Fatal+counts.Errors)
	if counts.Warnings > 0 {
		fmt.Fprintf(&sb, ", %d warning(s)", counts.Warnings)
	}
	if r.limitReached {
		fmt.Fprintf(&sb, " [limit reached, %d dropped]", r.droppedCount)
	}
	sb.WriteString("\n")
	for _, issue := range r.issues {
		if issue.Severity() == Fatal || issue.Severity() == Error {
			fmt.Fprintf(&sb, "  %s: %s\n", issue.Code(), issue.Message())
		}
	}
	return sb.String()
}
