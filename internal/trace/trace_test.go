package trace

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledIsNoop(t *testing.T) {
	require.NoError(t, InitWithConfig(Config{Enabled: false}))
	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
	_, _, ok := GetTraceFields(ctx)
	assert.False(t, ok)
}

func TestEnabledExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(Config{Enabled: true, Version: "test", Writer: &buf}))
	t.Cleanup(func() {
		_ = Shutdown(context.Background())
		_ = InitWithConfig(Config{Enabled: false})
	})
	assert.True(t, Enabled())

	ctx, span := StartSpan(context.Background(), "engine.Evaluate")
	traceID, spanID, ok := GetTraceFields(ctx)
	require.True(t, ok)
	assert.Len(t, traceID, 32)
	assert.Len(t, spanID, 16)
	span.End()

	assert.Contains(t, buf.String(), "engine.Evaluate")
	assert.Contains(t, buf.String(), ServiceName)
}
