package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTraceContext_KeepsIncomingIDs(t *testing.T) {
	tc := NewTraceContext("req-1", "trace-1")
	assert.Equal(t, "req-1", tc.RequestID)
	assert.Equal(t, "trace-1", tc.TraceID)
	assert.Len(t, tc.SpanID, 16)
}

func TestNewTraceContext_GeneratesMissingIDs(t *testing.T) {
	tc := NewTraceContext("", "")
	assert.NotEmpty(t, tc.RequestID)
	assert.NotEmpty(t, tc.TraceID)
	assert.NotEqual(t, tc.RequestID, tc.TraceID)
}

func TestScreenRoundTrip(t *testing.T) {
	ctx := WithScreen(context.Background(), "employees")
	ctx = WithTrace(ctx, NewTraceContext("req-2", ""))

	assert.Equal(t, "employees", GetScreen(ctx))
	assert.Equal(t, "req-2", GetRequestID(ctx))
	assert.Empty(t, GetScreen(context.Background()))
	assert.Nil(t, GetTrace(context.Background()))
}
