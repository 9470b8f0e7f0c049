package source

import (
	"testing"

	"github.com/simon-lentz/ivm/diag"
	"github.com/stretchr/testify/require"
)

func TestValidateTransitionAllowsEveryLegalEdge(t *testing.T) {
	cases := []struct{ from, to Status }{
		{StatusIdle, StatusLoading},
		{StatusIdle, StatusError},
		{StatusIdle, StatusCleanedUp},
		{StatusLoading, StatusInitialCommit},
		{StatusLoading, StatusReady},
		{StatusLoading, StatusError},
		{StatusLoading, StatusCleanedUp},
		{StatusInitialCommit, StatusReady},
		{StatusInitialCommit, StatusError},
		{StatusInitialCommit, StatusCleanedUp},
		{StatusReady, StatusLoadingSubset},
		{StatusReady, StatusCleanedUp},
		{StatusReady, StatusError},
		{StatusLoadingSubset, StatusReady},
		{StatusLoadingSubset, StatusCleanedUp},
		{StatusLoadingSubset, StatusError},
		{StatusError, StatusIdle},
		{StatusError, StatusCleanedUp},
		{StatusCleanedUp, StatusLoading},
		{StatusCleanedUp, StatusError},
	}
	for _, c := range cases {
		issue := ValidateTransition(c.from, c.to)
		require.Nil(t, issue, "%s -> %s should be legal", c.from, c.to)
	}
}

func TestValidateTransitionRejectsIllegalEdges(t *testing.T) {
	cases := []struct{ from, to Status }{
		{StatusIdle, StatusReady},
		{StatusIdle, StatusInitialCommit},
		{StatusReady, StatusLoading},
		{StatusReady, StatusInitialCommit},
		{StatusCleanedUp, StatusReady},
		{StatusCleanedUp, StatusIdle},
	}
	for _, c := range cases {
		issue := ValidateTransition(c.from, c.to)
		require.NotNil(t, issue, "%s -> %s should be illegal", c.from, c.to)
		require.Equal(t, diag.EInvalidStatusChange, issue.Code())
	}
}

func TestValidateTransitionSameStateIsNoOp(t *testing.T) {
	require.Nil(t, ValidateTransition(StatusReady, StatusReady))
}
