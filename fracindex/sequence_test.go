package fracindex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSequenceIsStrictlyIncreasing(t *testing.T) {
	keys := Sequence(10)
	require.Len(t, keys, 10)
	for i := 1; i < len(keys); i++ {
		require.True(t, keys[i-1].Less(keys[i]))
	}
}

func TestSequenceZeroIsEmpty(t *testing.T) {
	require.Empty(t, Sequence(0))
}
