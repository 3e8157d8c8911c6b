// Package telemetry defines the tracing interfaces used by the solver.
package telemetry

import (
	"context"
)

// Span names emitted by the solver.
const (
	SpanSolve  = "maker.solve"
	SpanStep   = "maker.step"
	SpanSample = "maker.sample"
	SpanVerify = "maker.verify"
)

// Tracer creates spans.
type Tracer interface {
	// StartSpan starts a span and returns a context carrying it.
	StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span represents a unit of work in a trace.
type Span interface {
	End()
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)

	// Finish records err, sets the status accordingly and ends the span.
	Finish(err error)
}

// Attribute represents a key-value pair. Value is a string, int, int64,
// float64 or bool.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an integer attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Float64 creates a float64 attribute.
func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// NoopTracer discards spans.
type NoopTracer struct{}

// StartSpan implements Tracer.
func (NoopTracer) StartSpan(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End()                          {}
func (noopSpan) SetAttributes(...Attribute)    {}
func (noopSpan) AddEvent(string, ...Attribute) {}
func (noopSpan) Finish(error)                  {}

var (
	_ Tracer = NoopTracer{}
	_ Span   = noopSpan{}
)
