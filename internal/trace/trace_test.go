package trace

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNilLoggerIsNoOp(t *testing.T) {
	var logger *slog.Logger
	Debug(context.Background(), logger, "msg")
	op := Begin(context.Background(), logger, "ivm.dataflow.run")
	require.Nil(t, op)
	op.End(nil) // must not panic on nil receiver
}

func TestBeginEndLogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := WithRequestID(context.Background(), "tx-1")

	op := Begin(ctx, logger, "ivm.dataflow.run")
	require.NotNil(t, op)
	op.End(nil)
	op.End(nil) // second call must not log again

	out := buf.String()
	require.Contains(t, out, "tx-1")
	require.Contains(t, out, "ivm.dataflow.run")
	require.Equal(t, 2, countLines(out))
}

func countLines(s string) int {
	n := 0
	for _, b := range []byte(s) {
		if b == '\n' {
			n++
		}
	}
	return n
}

func TestDebugLazyNotCalledWhenDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo}))
	called := false
	DebugLazy(context.Background(), logger, "msg", func() []slog.Attr {
		called = true
		return nil
	})
	require.False(t, called)
}
