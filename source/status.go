package source

import (
	"fmt"

	"github.com/simon-lentz/ivm/diag"
)

// Status is a collection's lifecycle state (§3 "Collection status"),
// shared between source collections and the live-query coordinator's own
// result-collection status, since both obey the identical transition
// table.
type Status string

const (
	StatusIdle           Status = "idle"
	StatusLoading        Status = "loading"
	StatusInitialCommit  Status = "initialCommit"
	StatusReady          Status = "ready"
	StatusError          Status = "error"
	StatusCleanedUp      Status = "cleaned-up"
	StatusLoadingSubset  Status = "loadingSubset"
)

// legalTransitions encodes §3's transition table verbatim. loadingSubset
// is a sub-state of ready the coordinator enters while one or more
// loadSubset calls are outstanding (§5); it behaves like ready for every
// other transition's purposes, so it shares ready's outgoing edges plus
// the edge back to ready itself once all pending loads resolve.
var legalTransitions = map[Status]map[Status]bool{
	StatusIdle: {
		StatusLoading:   true,
		StatusError:     true,
		StatusCleanedUp: true,
	},
	StatusLoading: {
		StatusInitialCommit: true,
		StatusReady:         true,
		StatusError:         true,
		StatusCleanedUp:     true,
	},
	StatusInitialCommit: {
		StatusReady:     true,
		StatusError:     true,
		StatusCleanedUp: true,
	},
	StatusReady: {
		StatusLoadingSubset: true,
		StatusCleanedUp:     true,
		StatusError:         true,
	},
	StatusLoadingSubset: {
		StatusReady:     true,
		StatusCleanedUp: true,
		StatusError:     true,
	},
	StatusError: {
		StatusIdle:      true,
		StatusCleanedUp: true,
	},
	StatusCleanedUp: {
		StatusLoading: true,
		StatusError:   true,
	},
}

// ValidateTransition reports whether moving from `from` to `to` is legal
// per §3's transition table, returning a [diag.EInvalidStatusChange]
// issue describing the rejected transition when it is not.
func ValidateTransition(from, to Status) *diag.Issue {
	if from == to {
		return nil
	}
	if legalTransitions[from][to] {
		return nil
	}
	issue := diag.NewIssue(diag.Error, diag.EInvalidStatusChange,
		fmt.Sprintf("illegal status transition %s -> %s", from, to)).Build()
	return &issue
}

// Change describes one status transition, matching the `status:change`
// event payload (§6: "{status, previousStatus}").
type Change struct {
	Status         Status
	PreviousStatus Status
}
