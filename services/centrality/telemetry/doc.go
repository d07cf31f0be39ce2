// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry wires OpenTelemetry tracing and metrics for the
// centrality service.
//
// OTel is used directly: packages call otel.Tracer and otel.Meter, and the
// backend is chosen by exporter configuration only.
//
// # Traces
//
// "otlp" exports over gRPC (default endpoint localhost:4317), "stdout"
// pretty-prints spans, "none" keeps the no-op provider.
//
// # Metrics
//
// "prometheus" registers with the default Prometheus registry and exposes
// MetricsHandler for /metrics. "stdout" uses a periodic reader. "none"
// disables metrics.
//
// # Usage
//
//	shutdown, err := telemetry.Init(ctx, cfg)
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer shutdown(context.Background())
//
//	metrics, err := telemetry.NewMetrics(otel.Meter("centrality"))
//
// # Environment Variables
//
//   - CENTRALITY_ENV: deployment environment (default: development)
//   - OTEL_TRACES_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_METRICS_EXPORTER: prometheus, stdout or none (default: prometheus)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint
//
// # Thread Safety
//
// All exported functions are safe for concurrent use after Init returns.
package telemetry
