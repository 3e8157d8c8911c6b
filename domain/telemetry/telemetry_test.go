package telemetry

import (
	"context"
	"errors"
	"testing"
)

func TestAttributes(t *testing.T) {
	tests := []struct {
		attr  Attribute
		key   string
		value any
	}{
		{String("model", "gpt-4.1"), "model", "gpt-4.1"},
		{Int("step", 3), "step", 3},
		{Int64("tokens", 750), "tokens", int64(750)},
		{Float64("temperature", 0.1), "temperature", 0.1},
		{Bool("timed_out", true), "timed_out", true},
	}

	for _, tt := range tests {
		if tt.attr.Key != tt.key || tt.attr.Value != tt.value {
			t.Errorf("got %+v, want %s=%v", tt.attr, tt.key, tt.value)
		}
	}
}

func TestNoopTracer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	got, span := NoopTracer{}.StartSpan(ctx, SpanStep, Int("step", 1))
	if got != ctx {
		t.Error("NoopTracer should return the input context")
	}

	span.SetAttributes(Bool("decided", true))
	span.AddEvent("vote")
	span.Finish(errors.New("boom"))
	span.End()
}
