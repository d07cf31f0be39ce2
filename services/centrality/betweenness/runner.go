// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package betweenness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/centrality/services/centrality/concurrency"
	"github.com/AleutianAI/centrality/services/centrality/graph"
	"github.com/AleutianAI/centrality/services/centrality/progress"
	"github.com/AleutianAI/centrality/services/centrality/telemetry"
)

var runnerTracer = otel.Tracer("centrality.betweenness")

var (
	// ErrNilGraph is returned by NewRunner when no graph is given.
	ErrNilGraph = errors.New("graph must not be nil")

	// ErrNilContext is returned when a nil context is passed to a run.
	ErrNilContext = errors.New("context must not be nil")
)

// Run status labels.
const (
	statusOK         = "ok"
	statusTerminated = "terminated"
	statusError      = "error"
)

// RunResult is the outcome of one Runner.Run.
type RunResult struct {
	// RunID uniquely identifies the run in logs and traces.
	RunID string `json:"run_id" yaml:"run_id"`

	// Centralities are index-aligned to node ids.
	Centralities []float64 `json:"centralities" yaml:"centralities"`

	NodeCount     int           `json:"node_count" yaml:"node_count"`
	SourceCount   int           `json:"source_count" yaml:"source_count"`
	Weighted      bool          `json:"weighted" yaml:"weighted"`
	Normalized    bool          `json:"normalized" yaml:"normalized"`
	ExecutionTime time.Duration `json:"execution_time_ns" yaml:"execution_time_ns"`
}

// StatsResult is the outcome of Runner.Stats.
type StatsResult struct {
	RunID       string `json:"run_id" yaml:"run_id"`
	NodeCount   int    `json:"node_count" yaml:"node_count"`
	SourceCount int    `json:"source_count" yaml:"source_count"`
	Stats       `yaml:",inline"`
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger used for run lifecycle lines.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records run metrics on m.
func WithMetrics(m *telemetry.Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithProgress registers fn to observe (done, total) source counts. fn is
// called from worker goroutines and must be safe for concurrent use.
func WithProgress(fn func(done, total int64)) RunnerOption {
	return func(r *Runner) {
		r.onProgress = fn
	}
}

// Runner binds a graph to a betweenness configuration.
//
// Description:
//
//	Runner validates the configuration, selects sources, picks the weighted
//	or unweighted parallel engine, bridges the caller's context into the
//	engine's termination flag and records tracing and metrics.
//
// Thread Safety: Safe for concurrent use; each call owns its engine state.
type Runner struct {
	graph      *graph.Graph
	config     Config
	logger     *slog.Logger
	metrics    *telemetry.Metrics
	onProgress func(done, total int64)
}

// NewRunner creates a Runner.
//
// Outputs:
//
//   - *Runner: The runner.
//   - error: ErrNilGraph, or ErrInvalidConfig from cfg.Validate.
func NewRunner(g *graph.Graph, cfg Config, opts ...RunnerOption) (*Runner, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	if cfg.SamplingStrategy == "" {
		cfg.SamplingStrategy = SamplingAll
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		graph:  g,
		config: cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the runner's configuration.
func (r *Runner) Config() Config {
	return r.config
}

// Run computes betweenness for every node.
//
// Description:
//
//	Cancelling ctx stops the workers at their next poll; the run then fails
//	with an error wrapping concurrency.ErrTerminated and no scores.
//
// Inputs:
//
//   - ctx: Cancellation and tracing context. Must not be nil.
//
// Outputs:
//
//   - *RunResult: Scores and run metadata.
//   - error: ErrNilContext, ErrInvalidConfig, or a wrapped ErrTerminated.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	runID := uuid.NewString()
	engine := r.engineName()
	nodeCount := r.graph.NodeCount()

	ctx, span := runnerTracer.Start(ctx, "Runner.Run",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.String("engine", engine),
			attribute.Int("node_count", nodeCount),
			attribute.Int("relationship_count", r.graph.RelationshipCount()),
			attribute.String("direction", r.config.Direction),
			attribute.Int("concurrency", r.config.Concurrency),
		),
	)
	defer span.End()

	logger := telemetry.LoggerWithTrace(ctx, r.logger).With(
		slog.String("run_id", runID),
		slog.String("engine", engine),
	)
	start := time.Now()

	result, sources, err := r.compute(ctx, logger)
	elapsed := time.Since(start)
	if err != nil {
		status := statusError
		if errors.Is(err, concurrency.ErrTerminated) {
			status = statusTerminated
			span.AddEvent("terminated")
			err = fmt.Errorf("betweenness terminated: %w", err)
		}
		telemetry.RecordError(span, err)
		r.metrics.RecordRun(ctx, engine, status, elapsed, 0)
		logger.Warn("betweenness run failed",
			slog.String("status", status),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	scores := result.Centralities
	if r.config.Normalize {
		orientation, _ := r.config.Orientation()
		scores = Normalize(scores, nodeCount, orientation != graph.Undirected)
	}

	r.metrics.RecordRun(ctx, engine, statusOK, elapsed, int64(sources))
	span.SetAttributes(
		attribute.Int("source_count", sources),
		attribute.Int64("elapsed_ms", elapsed.Milliseconds()),
	)
	telemetry.SetSpanOK(span)
	logger.Info("betweenness run completed",
		slog.Int("node_count", nodeCount),
		slog.Int("source_count", sources),
		slog.Duration("elapsed", elapsed),
	)

	return &RunResult{
		RunID:         runID,
		Centralities:  scores,
		NodeCount:     nodeCount,
		SourceCount:   sources,
		Weighted:      r.config.Weighted(),
		Normalized:    r.config.Normalize,
		ExecutionTime: elapsed,
	}, nil
}

// Stream runs and returns one row per node ordered by node id.
func (r *Runner) Stream(ctx context.Context) ([]Score, error) {
	res, err := r.Run(ctx)
	if err != nil {
		return nil, err
	}
	return Stream(Result{Centralities: res.Centralities}), nil
}

// Stats runs and summarises the score distribution.
func (r *Runner) Stats(ctx context.Context) (*StatsResult, error) {
	res, err := r.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsResult{
		RunID:       res.RunID,
		NodeCount:   res.NodeCount,
		SourceCount: res.SourceCount,
		Stats:       ComputeStats(res.Centralities, res.ExecutionTime),
	}, nil
}

// EstimateMemory estimates the memory a Run would need on this graph.
func (r *Runner) EstimateMemory() MemoryRange {
	return EstimateMemory(r.graph.NodeCount(), r.graph.RelationshipCount(), r.config.Concurrency, r.config.Weighted())
}

func (r *Runner) engineName() string {
	if r.config.Weighted() {
		return "weighted"
	}
	return "unweighted"
}

// compute selects sources and dispatches to the engine. It returns the raw
// result and the number of sources.
func (r *Runner) compute(ctx context.Context, logger *slog.Logger) (Result, int, error) {
	orientation, err := r.config.Orientation()
	if err != nil {
		return Result{}, 0, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	nodeCount := r.graph.NodeCount()
	sources, err := SelectSources(
		nodeCount,
		func(v int) int { return r.graph.Degree(v, orientation) },
		r.config.SamplingStrategy,
		r.config.SamplingSize,
		r.config.RandomSeed,
	)
	if err != nil {
		return Result{}, 0, err
	}

	opts := make([]progress.Option, 0, 1)
	if r.onProgress != nil {
		opts = append(opts, progress.WithListener(r.onProgress))
	}
	tracker := progress.NewTracker("betweenness", int64(len(sources)), logger, opts...)

	flag, release := concurrency.FromContext(ctx)
	defer release()

	divisor := Divisor(orientation)
	logger.Debug("betweenness run starting",
		slog.Int("source_count", len(sources)),
		slog.String("orientation", orientation.String()),
		slog.Float64("divisor", divisor),
	)

	var result Result
	if r.config.Weighted() {
		result, err = ComputeParallelWeighted(nodeCount, sources, divisor, r.config.Concurrency,
			flag, tracker.OnSourceDone(), r.graph.WeightedNeighbors(orientation))
	} else {
		result, err = ComputeParallelUnweighted(nodeCount, sources, divisor, r.config.Concurrency,
			flag, tracker.OnSourceDone(), r.graph.Neighbors(orientation))
	}
	if err != nil {
		return Result{}, 0, err
	}

	// Engines return an empty slice when there is nothing to traverse.
	if len(result.Centralities) != nodeCount {
		result.Centralities = make([]float64, nodeCount)
	}
	return result, len(sources), nil
}
