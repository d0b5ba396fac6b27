package observe

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/junction/pkg/junction"
)

// Default tracer name for Junction stores.
const defaultTracerName = "junction"

// TracerConfig configures the OpenTelemetry observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "junction").
	TracerName string

	// IncludeKeys records store keys as attributes.
	// Keys may carry user data; enabled by default.
	IncludeKeys bool

	// Filter determines which events are recorded.
	// If nil, all events are recorded.
	Filter func(junction.Event) bool

	// Provider overrides the global tracer provider.
	Provider trace.TracerProvider
}

// TracerOption configures the OpenTelemetry observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithIncludeKeys enables/disables key attributes.
func WithIncludeKeys(include bool) TracerOption {
	return func(c *TracerConfig) {
		c.IncludeKeys = include
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(junction.Event) bool) TracerOption {
	return func(c *TracerConfig) {
		c.Filter = filter
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = tp
	}
}

func defaultTracerConfig() TracerConfig {
	return TracerConfig{
		TracerName:  defaultTracerName,
		IncludeKeys: true,
	}
}

// Tracer is a junction.Observer that records store operations on the span
// carried by a context.
//
// Every operation becomes a "junction.<op>" event on the active span.
// Rejected operations are recorded as span errors. Dispose additionally
// starts and ends a "junction.dispose" child span.
type Tracer struct {
	ctx    context.Context
	config TracerConfig
	tracer trace.Tracer
}

// NewTracer creates a Tracer bound to ctx. The tracer uses the global
// OpenTelemetry tracer provider unless WithTracerProvider is given.
func NewTracer(ctx context.Context, opts ...TracerOption) *Tracer {
	config := defaultTracerConfig()
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.Provider != nil {
		tracer = config.Provider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	return &Tracer{ctx: ctx, config: config, tracer: tracer}
}

// Observe implements junction.Observer.
func (t *Tracer) Observe(e junction.Event) {
	if t.config.Filter != nil && !t.config.Filter(e) {
		return
	}

	attrs := t.attributes(e)

	if e.Op == junction.OpDispose && e.Err == nil {
		_, span := t.tracer.Start(t.ctx, "junction.dispose", trace.WithAttributes(attrs...))
		span.End()
		return
	}

	span := trace.SpanFromContext(t.ctx)
	name := fmt.Sprintf("junction.%s", e.Op)
	span.AddEvent(name, trace.WithAttributes(attrs...))

	if e.Err != nil {
		span.RecordError(e.Err, trace.WithAttributes(attrs...))
		span.SetStatus(codes.Error, e.Err.Error())
	}
}

func (t *Tracer) attributes(e junction.Event) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("junction.op", string(e.Op)),
	}
	if t.config.IncludeKeys && e.Key != "" {
		attrs = append(attrs, attribute.String("junction.key", e.Key))
	}
	switch e.Op {
	case junction.OpReset:
		attrs = append(attrs, attribute.Int("junction.keys", e.Count))
	case junction.OpDispose:
		attrs = append(attrs, attribute.Int("junction.signals", e.Count))
	}
	return attrs
}
