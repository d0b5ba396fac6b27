// Package observe provides junction.Observer implementations for
// Prometheus metrics and OpenTelemetry tracing.
//
//	reg := prometheus.NewRegistry()
//	metrics, err := observe.NewMetrics(observe.WithRegistry(reg))
//	if err != nil {
//	    return err
//	}
//
//	ctx, span := otel.Tracer("app").Start(ctx, "load-profile")
//	defer span.End()
//
//	store := junction.New(
//	    junction.WithObserver(metrics),
//	    junction.WithObserver(observe.NewTracer(ctx)),
//	)
package observe
