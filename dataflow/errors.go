package dataflow

import "errors"

// Error sentinels for internal graph failures: programmer errors and
// wiring mistakes, not data-level problems (which never produce an
// error return in this package).
var (
	ErrNilGraph    = errors.New("dataflow: nil *Graph receiver")
	ErrUnknownNode = errors.New("dataflow: reference to an unregistered node")
	ErrCycle       = errors.New("dataflow: node graph contains a cycle")
)
