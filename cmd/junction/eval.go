package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/junction/internal/config"
	"github.com/vango-dev/junction/pkg/junction"
	"github.com/vango-dev/junction/pkg/observe"
)

type evalOptions struct {
	configPath string
	logLevel   string
	json       bool
	metrics    bool
	trace      bool
}

func evalCmd() *cobra.Command {
	var opts evalOptions

	cmd := &cobra.Command{
		Use:   "eval [script]",
		Short: "Run a script of store operations",
		Long: `Run a script of store operations and print the final snapshot.

The script is read from the given file, or from stdin when no file is
given. Each line holds one operation:

  set <key> <value>     store a value (values are parsed as YAML)
  write <key> <value>   write through the key's signal
  provide <key>         promote a key to a signal
  remove <key>          remove a key
  reset                 remove every key
  get <key>             print a key's value
  dispose               dispose the store

Examples:
  junction eval script.txt
  echo "set theme dark" | junction eval --json
  junction eval script.txt --metrics --trace`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runEval(cmd.Context(), opts, in, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to junction.yaml or junction.json")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the snapshot as JSON")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print store metrics after the run")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Export spans to stderr")

	return cmd
}

func runEval(ctx context.Context, opts evalOptions, in io.Reader, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	cmds, err := parseScript(in)
	if err != nil {
		return err
	}

	kind := newKind(cfg, logger)

	var registry *prometheus.Registry
	if cfg.Metrics.Enabled || opts.metrics {
		registry = prometheus.NewRegistry()
		m, err := observe.NewMetrics(
			observe.WithRegistry(registry),
			observe.WithNamespace(cfg.Metrics.Namespace),
			observe.WithSubsystem(cfg.Metrics.Subsystem),
		)
		if err != nil {
			return err
		}
		kind.With(junction.WithObserver(m))
	}

	if cfg.Tracing.Enabled || opts.trace {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(errOut), stdouttrace.WithPrettyPrint())
		if err != nil {
			return err
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Warn("tracer shutdown failed", "error", err)
			}
		}()

		spanCtx, span := tp.Tracer(cfg.Tracing.TracerName).Start(ctx, "junction.eval")
		defer span.End()

		kind.With(junction.WithObserver(observe.NewTracer(spanCtx,
			observe.WithTracerProvider(tp),
			observe.WithTracerName(cfg.Tracing.TracerName),
		)))
	}

	store := kind.New()
	defer store.Dispose()

	logger.Debug("running script", "operations", len(cmds), "plugins", strings.Join(kind.Plugins(), ","))
	if err := runScript(store, cmds, out); err != nil {
		return err
	}

	if !store.Disposed() {
		if err := printSnapshot(out, store.Snapshot(), opts.json); err != nil {
			return err
		}
	}

	if registry != nil {
		return printMetrics(out, registry)
	}
	return nil
}

// newKind builds the store Kind described by cfg.
func newKind(cfg *config.Config, logger *slog.Logger) *junction.Kind {
	kind := junction.NewKind(junction.WithLogger(logger))

	if cfg.Signals == config.SignalsReactive {
		kind.Use(junction.Reactive, nil)
	}
	if cfg.Transform == config.TransformTrim {
		kind.Use(junction.TrimStrings, nil)
	}
	if len(cfg.Seed) > 0 {
		kind.Use(junction.Defaults, cfg.Seed)
	}
	return kind
}

func printSnapshot(out io.Writer, snapshot map[string]any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	}

	if len(snapshot) == 0 {
		_, err := fmt.Fprintln(out, "{}")
		return err
	}
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// printMetrics writes every gathered counter, gauge and histogram count
// as "name{labels} value" lines.
func printMetrics(out io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "# metrics")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(out, "%s%s %v\n", mf.GetName(), formatLabels(m.GetLabel()), metricValue(mf.GetType(), m))
		}
	}
	return nil
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}

func metricValue(t dto.MetricType, m *dto.Metric) any {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return m.GetHistogram().GetSampleCount()
	default:
		return "?"
	}
}
