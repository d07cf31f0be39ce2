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
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics contains the instruments of the centrality service.
//
// Description:
//
//	Counters and histograms for betweenness runs and the HTTP surface.
//	All names use the "centrality_" prefix.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// --- Run Metrics ---

	// RunsTotal counts runs by engine ("weighted"/"unweighted") and status.
	RunsTotal metric.Int64Counter

	// RunDuration records run duration in seconds.
	RunDuration metric.Float64Histogram

	// SourcesProcessedTotal counts completed source traversals.
	SourcesProcessedTotal metric.Int64Counter

	// --- HTTP Metrics ---

	// HTTPRequestsTotal counts HTTP requests by method, route and status.
	HTTPRequestsTotal metric.Int64Counter

	// HTTPRequestDuration records HTTP request duration in seconds.
	HTTPRequestDuration metric.Float64Histogram
}

// NewMetrics creates every instrument on the given meter.
//
// Inputs:
//
//	meter - The OTel meter to register instruments with.
//
// Outputs:
//
//	*Metrics - The instruments.
//	error - Non-nil if any registration fails.
//
// Example:
//
//	metrics, err := telemetry.NewMetrics(otel.Meter("centrality"))
//	if err != nil {
//	    return fmt.Errorf("create metrics: %w", err)
//	}
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.RunsTotal, err = meter.Int64Counter(
		"centrality_runs_total",
		metric.WithDescription("Total betweenness runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create runs_total: %w", err)
	}

	m.RunDuration, err = meter.Float64Histogram(
		"centrality_run_duration_seconds",
		metric.WithDescription("Betweenness run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300),
	)
	if err != nil {
		return nil, fmt.Errorf("create run_duration: %w", err)
	}

	m.SourcesProcessedTotal, err = meter.Int64Counter(
		"centrality_sources_processed_total",
		metric.WithDescription("Total completed source traversals"),
		metric.WithUnit("{source}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create sources_processed_total: %w", err)
	}

	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"centrality_http_requests_total",
		metric.WithDescription("Total HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"centrality_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_request_duration: %w", err)
	}

	return m, nil
}

// RecordRun records one finished run. Nil receivers are ignored.
func (m *Metrics) RecordRun(ctx context.Context, engine, status string, elapsed time.Duration, sources int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("engine", engine),
		attribute.String("status", status),
	)
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("engine", engine)))
	if sources > 0 {
		m.SourcesProcessedTotal.Add(ctx, sources, metric.WithAttributes(attribute.String("engine", engine)))
	}
}

// RecordHTTP records one served request. Nil receivers are ignored.
func (m *Metrics) RecordHTTP(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, elapsed.Seconds(), attrs)
}
