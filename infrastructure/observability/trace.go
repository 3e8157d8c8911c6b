package observability

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/maker-go/domain/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer implements telemetry.Tracer on top of an OpenTelemetry tracer.
type Tracer struct {
	otel trace.Tracer
}

var (
	_ telemetry.Tracer = (*Tracer)(nil)
	_ telemetry.Span   = span{}
)

// NewTracer wraps t.
func NewTracer(t trace.Tracer) *Tracer {
	return &Tracer{otel: t}
}

func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...telemetry.Attribute) (context.Context, telemetry.Span) {
	ctx, s := t.otel.Start(ctx, name, trace.WithAttributes(keyValues(attrs)...))
	return ctx, span{s}
}

type span struct {
	trace.Span
}

func (s span) End() {
	s.Span.End()
}

func (s span) SetAttributes(attrs ...telemetry.Attribute) {
	s.Span.SetAttributes(keyValues(attrs)...)
}

func (s span) AddEvent(name string, attrs ...telemetry.Attribute) {
	s.Span.AddEvent(name, trace.WithAttributes(keyValues(attrs)...))
}

// Finish marks the span failed when err is non-nil and ends it.
func (s span) Finish(err error) {
	if err == nil {
		s.SetStatus(codes.Ok, "")
	} else {
		s.RecordError(err)
		s.SetStatus(codes.Error, err.Error())
	}
	s.End()
}

// keyValues drops attributes whose value has no OpenTelemetry counterpart.
func keyValues(attrs []telemetry.Attribute) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		if kv, ok := keyValue(a); ok {
			out = append(out, kv)
		}
	}
	return out
}

func keyValue(a telemetry.Attribute) (attribute.KeyValue, bool) {
	k := attribute.Key(a.Key)
	switch v := a.Value.(type) {
	case string:
		return k.String(v), true
	case int:
		return k.Int(v), true
	case int64:
		return k.Int64(v), true
	case float64:
		return k.Float64(v), true
	case bool:
		return k.Bool(v), true
	case []string:
		return k.StringSlice(v), true
	case fmt.Stringer:
		return k.String(v.String()), true
	}
	return attribute.KeyValue{}, false
}
