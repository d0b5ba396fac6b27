package observe

import (
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/junction/internal/errors"
	"github.com/vango-dev/junction/pkg/junction"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "junction").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "junction",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a junction.Observer that records store activity.
//
// Metrics collected:
//   - junction_operations_total: Counter of operations by op and status
//   - junction_errors_total: Counter of rejected operations by op and error code
//   - junction_live_signals: Gauge of signals created and not yet disposed
//   - junction_reset_keys: Histogram of keys cleared per reset
//
// A single Metrics value may observe any number of stores.
type Metrics struct {
	operations  *prometheus.CounterVec
	errors      *prometheus.CounterVec
	liveSignals prometheus.Gauge
	resetKeys   prometheus.Histogram
}

// NewMetrics creates and registers the store metrics. If collectors with
// the same descriptors are already registered, they are reused.
func NewMetrics(opts ...MetricsOption) (*Metrics, error) {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "operations_total",
			Help:        "Total number of store operations",
			ConstLabels: config.ConstLabels,
		}, []string{"op", "status"}),

		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_total",
			Help:        "Total number of rejected store operations",
			ConstLabels: config.ConstLabels,
		}, []string{"op", "code"}),

		liveSignals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_signals",
			Help:        "Number of signals created by stores and not yet disposed",
			ConstLabels: config.ConstLabels,
		}),

		resetKeys: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reset_keys",
			Help:        "Number of keys cleared per reset",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 10, 100, 1000},
		}),
	}

	if config.Registry == nil {
		return m, nil
	}

	var err error
	if m.operations, err = register(config.Registry, m.operations); err != nil {
		return nil, err
	}
	if m.errors, err = register(config.Registry, m.errors); err != nil {
		return nil, err
	}
	if m.liveSignals, err = register(config.Registry, m.liveSignals); err != nil {
		return nil, err
	}
	if m.resetKeys, err = register(config.Registry, m.resetKeys); err != nil {
		return nil, err
	}
	return m, nil
}

// register registers c, returning the existing collector if an identical
// one is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if stderrors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Observe implements junction.Observer.
func (m *Metrics) Observe(e junction.Event) {
	op := string(e.Op)
	if e.Err != nil {
		m.operations.WithLabelValues(op, "error").Inc()
		m.errors.WithLabelValues(op, errorCode(e.Err)).Inc()
		return
	}
	m.operations.WithLabelValues(op, "success").Inc()

	switch e.Op {
	case junction.OpProvide:
		m.liveSignals.Inc()
	case junction.OpDispose:
		m.liveSignals.Sub(float64(e.Count))
	case junction.OpReset:
		m.resetKeys.Observe(float64(e.Count))
	}
}

// errorCode returns a low-cardinality label for err.
func errorCode(err error) string {
	var je *errors.Error
	if stderrors.As(err, &je) && je.Code != "" {
		return je.Code
	}
	return "unknown"
}
