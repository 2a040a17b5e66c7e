package otel

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Scope is one span as the domain code sees it.
type Scope interface {
	End()
	TraceError(err error)
	TraceIfError(err error)
	AddEvent(name string)
	SetAttribute(key string, value any)
	SetAttributes(attributes map[string]any)
}

type spanScope struct {
	span oteltrace.Span
}

func NewScope(span oteltrace.Span) Scope {
	return &spanScope{
		span: span,
	}
}

func (s *spanScope) End() {
	s.span.End()
}

func (s *spanScope) TraceError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *spanScope) TraceIfError(err error) {
	if err != nil {
		s.TraceError(err)
	}
}

func (s *spanScope) AddEvent(name string) {
	s.span.AddEvent(name)
}

func (s *spanScope) SetAttribute(key string, value any) {
	s.span.SetAttributes(toAttribute(key, value))
}

func (s *spanScope) SetAttributes(attributes map[string]any) {
	kvs := make([]attribute.KeyValue, 0, len(attributes))
	for key, value := range attributes {
		kvs = append(kvs, toAttribute(key, value))
	}

	s.span.SetAttributes(kvs...)
}

// toAttribute keeps money as float64 and counts as int64 so spans can be
// filtered numerically; anything else is formatted.
func toAttribute(key string, value any) attribute.KeyValue {
	switch val := value.(type) {
	case bool:
		return attribute.Bool(key, val)
	case string:
		return attribute.String(key, val)
	case *string:
		if val == nil {
			return attribute.String(key, "")
		}

		return attribute.String(key, *val)
	case int:
		return attribute.Int(key, val)
	case int64:
		return attribute.Int64(key, val)
	case float64:
		return attribute.Float64(key, val)
	case time.Time:
		return attribute.String(key, val.Format(time.RFC3339))
	case []string:
		return attribute.StringSlice(key, val)
	default:
		return attribute.String(key, fmt.Sprintf("%v", val))
	}
}
