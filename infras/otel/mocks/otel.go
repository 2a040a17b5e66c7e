// Package mocks provides tracers for tests. Spans are real SDK spans that go
// nowhere unless a recorder is attached.
package mocks

import (
	"voyage/infras/otel"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func NewOtel() otel.Otel {
	return otel.FromProvider(trace.NewTracerProvider())
}

// NewRecorder returns a tracer whose finished spans land in the recorder.
func NewRecorder() (otel.Otel, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()

	return otel.FromProvider(trace.NewTracerProvider(trace.WithSpanProcessor(recorder))), recorder
}
