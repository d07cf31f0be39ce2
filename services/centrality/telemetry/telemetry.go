// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

var (
	// ErrNilContext is returned when Init receives a nil context.
	ErrNilContext = errors.New("telemetry: nil context")

	// ErrUnknownExporter is returned for an unrecognised exporter name.
	ErrUnknownExporter = errors.New("unknown exporter type")
)

// Exporter names.
const (
	ExporterNone       = "none"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterPrometheus = "prometheus"
)

// Config selects the trace and metric backends of a centrality process.
type Config struct {
	ServiceName    string `json:"service_name" yaml:"service_name" mapstructure:"service_name"`
	ServiceVersion string `json:"service_version" yaml:"service_version" mapstructure:"service_version"`
	Environment    string `json:"environment" yaml:"environment" mapstructure:"environment"`

	// TraceExporter is "otlp", "stdout" or "none". Empty means "none".
	TraceExporter string `json:"trace_exporter" yaml:"trace_exporter" mapstructure:"trace_exporter"`

	// TraceSampleRatio is the fraction of root runs that are traced, in
	// [0, 1]. Child spans follow their parent.
	TraceSampleRatio float64 `json:"trace_sample_ratio" yaml:"trace_sample_ratio" mapstructure:"trace_sample_ratio"`

	// MetricExporter is "prometheus", "stdout" or "none". Empty means "none".
	MetricExporter string `json:"metric_exporter" yaml:"metric_exporter" mapstructure:"metric_exporter"`

	// OTLPEndpoint is the gRPC host:port of the OTLP trace receiver.
	OTLPEndpoint string `json:"otlp_endpoint" yaml:"otlp_endpoint" mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `json:"otlp_insecure" yaml:"otlp_insecure" mapstructure:"otlp_insecure"`
}

// DefaultConfig returns the configuration of a local run: no tracing and
// Prometheus metrics.
//
// Environment variables override defaults where applicable:
//   - CENTRALITY_ENV: environment name
//   - OTEL_TRACES_EXPORTER: trace exporter type
//   - OTEL_METRICS_EXPORTER: metric exporter type
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint
func DefaultConfig() Config {
	return Config{
		ServiceName:      "centrality",
		ServiceVersion:   "1.0.0",
		Environment:      getEnvOr("CENTRALITY_ENV", "development"),
		TraceExporter:    getEnvOr("OTEL_TRACES_EXPORTER", ExporterNone),
		TraceSampleRatio: 1,
		MetricExporter:   getEnvOr("OTEL_METRICS_EXPORTER", ExporterPrometheus),
		OTLPEndpoint:     getEnvOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTLPInsecure:     true,
	}
}

// Init installs the global tracer and meter providers described by cfg.
//
// Description:
//
//	Providers are only installed for backends other than "none", so with
//	both exporters disabled otel keeps its no-op providers. A Prometheus
//	backend gets its own registry, served by MetricsHandler.
//
// Inputs:
//
//	ctx - Used to dial the OTLP exporter. Must not be nil.
//	cfg - Backend selection.
//
// Outputs:
//
//	shutdown - Flushes pending spans and metrics. Must be called on exit.
//	error - ErrNilContext, or a wrapped ErrUnknownExporter or exporter error.
//
// Thread Safety: Call once at process startup.
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
		attribute.String("deployment.environment", cfg.Environment),
	)

	var chain shutdownChain

	tp, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	if tp != nil {
		otel.SetTracerProvider(tp)
		chain = append(chain, tp.Shutdown)
	}

	mp, handler, err := newMeterProvider(cfg, res)
	if err != nil {
		_ = chain.shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}
	if mp != nil {
		otel.SetMeterProvider(mp)
		chain = append(chain, mp.Shutdown)
	}
	setMetricsHandler(handler)

	return chain.shutdown, nil
}

// shutdownChain stops providers in reverse installation order.
type shutdownChain []func(context.Context) error

func (c shutdownChain) shutdown(ctx context.Context) error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown telemetry: %w", errors.Join(errs...))
	}
	return nil
}

// newTracerProvider returns nil for the "none" backend.
func newTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*trace.TracerProvider, error) {
	var (
		exporter trace.SpanExporter
		err      error
	)
	switch cfg.TraceExporter {
	case ExporterNone, "":
		return nil, nil
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	case ExporterStdout:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.TraceExporter)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s span exporter: %w", cfg.TraceExporter, err)
	}

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.TraceSampleRatio))),
	), nil
}

// newMeterProvider returns a nil provider for the "none" backend and a
// non-nil handler only for Prometheus.
func newMeterProvider(cfg Config, res *resource.Resource) (*metric.MeterProvider, http.Handler, error) {
	var (
		reader  metric.Reader
		handler http.Handler
	)
	switch cfg.MetricExporter {
	case ExporterNone, "":
		return nil, nil, nil
	case ExporterPrometheus:
		registry := prometheus.NewRegistry()
		exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
		if err != nil {
			return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		reader = exporter
		handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	case ExporterStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		reader = metric.NewPeriodicReader(exporter)
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.MetricExporter)
	}

	return metric.NewMeterProvider(metric.WithResource(res), metric.WithReader(reader)), handler, nil
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var (
	prometheusHandler   http.Handler
	prometheusHandlerMu sync.RWMutex
)

func setMetricsHandler(h http.Handler) {
	prometheusHandlerMu.Lock()
	defer prometheusHandlerMu.Unlock()
	prometheusHandler = h
}

// MetricsHandler returns the /metrics handler of the last Init with the
// Prometheus backend, nil otherwise.
//
// Thread Safety: Safe for concurrent use.
func MetricsHandler() http.Handler {
	prometheusHandlerMu.RLock()
	defer prometheusHandlerMu.RUnlock()
	return prometheusHandler
}
