// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/centrality/services/centrality/betweenness"
	"github.com/AleutianAI/centrality/services/centrality/concurrency"
	"github.com/AleutianAI/centrality/services/centrality/graph"
	"github.com/AleutianAI/centrality/services/centrality/telemetry"
)

// ServiceVersion is the centrality service version.
const ServiceVersion = "0.1.0"

// weightProperty is the relationship property name used when a request
// asks for weighted traversal. Request edges carry the weight inline.
const weightProperty = "weight"

// errInvalidEdge is returned for edge tuples that are not node ids.
var errInvalidEdge = errors.New("invalid edge")

// Options configures Handlers.
type Options struct {
	// Defaults fill the options a request leaves unset.
	Defaults betweenness.Config

	// RequestTimeout terminates runs that take longer. 0 disables it.
	RequestTimeout time.Duration

	// MaxEdges rejects requests with more edges. 0 disables the limit.
	MaxEdges int

	// MaxNodes rejects requests whose node range, from node_count or the
	// largest edge endpoint, exceeds it. 0 disables the limit.
	MaxNodes int

	// Metrics records run and request metrics. May be nil.
	Metrics *telemetry.Metrics

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// MetricsHandler serves GET /metrics. Nil uses
	// telemetry.MetricsHandler(); the route is skipped when both are nil.
	MetricsHandler http.Handler
}

// Handlers contains the HTTP handlers for the centrality service.
type Handlers struct {
	opts   Options
	logger *slog.Logger
}

// NewHandlers creates handlers.
func NewHandlers(opts Options) *Handlers {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Defaults.Concurrency == 0 {
		opts.Defaults = betweenness.DefaultConfig()
	}
	return &Handlers{opts: opts, logger: logger}
}

// HandleBetweenness handles POST /v1/centrality/betweenness.
//
// Description:
//
//	Builds a graph from the request edges, runs betweenness centrality and
//	replies in the requested mode. Runs are terminated when the client
//	goes away or the request timeout elapses.
//
// Request Body:
//
//	BetweennessRequest
//
// Response:
//
//	200 OK: Response with StreamData, StatsData or EstimateData
//	400 Bad Request: INVALID_REQUEST
//	413 Request Entity Too Large: INVALID_REQUEST (edge or node limit)
//	500 Internal Server Error: EXECUTION_ERROR
//	503 Service Unavailable: TERMINATED
func (h *Handlers) HandleBetweenness(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := telemetry.LoggerWithTrace(c.Request.Context(), h.logger).With(
		"request_id", requestID,
		"handler", "HandleBetweenness",
	)

	var req BetweennessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if h.opts.MaxEdges > 0 && len(req.Edges) > h.opts.MaxEdges {
		writeError(c, http.StatusRequestEntityTooLarge, CodeInvalidRequest,
			fmt.Sprintf("%d edges exceeds the limit of %d", len(req.Edges), h.opts.MaxEdges))
		return
	}

	if err := graph.ValidateNodeCount(req.NodeCount, h.opts.MaxNodes); err != nil {
		writeError(c, http.StatusRequestEntityTooLarge, CodeInvalidRequest, err.Error())
		return
	}

	g, err := buildGraph(req, h.opts.MaxNodes)
	if errors.Is(err, graph.ErrNodeLimit) {
		logger.Warn("Graph exceeds node limit", "error", err)
		writeError(c, http.StatusRequestEntityTooLarge, CodeInvalidRequest, err.Error())
		return
	}
	if err != nil {
		logger.Warn("Invalid graph", "error", err)
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	cfg := h.runConfig(req)
	runner, err := betweenness.NewRunner(g, cfg,
		betweenness.WithLogger(logger),
		betweenness.WithMetrics(h.opts.Metrics),
	)
	if err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = ModeStream
	}

	if mode == ModeEstimate {
		est := runner.EstimateMemory()
		writeOK(c, EstimateData{
			NodeCount:         g.NodeCount(),
			RelationshipCount: g.RelationshipCount(),
			Concurrency:       cfg.Concurrency,
			MinBytes:          est.MinBytes,
			MaxBytes:          est.MaxBytes,
		})
		return
	}

	ctx := c.Request.Context()
	if h.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.RequestTimeout)
		defer cancel()
	}

	logger.Info("Running betweenness",
		"node_count", g.NodeCount(),
		"relationship_count", g.RelationshipCount(),
		"mode", mode,
		"weighted", cfg.Weighted(),
	)

	res, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, concurrency.ErrTerminated) {
			writeError(c, http.StatusServiceUnavailable, CodeTerminated, err.Error())
			return
		}
		logger.Error("Betweenness failed", "error", err)
		writeError(c, http.StatusInternalServerError, CodeExecutionError, err.Error())
		return
	}

	if mode == ModeStats {
		stats := betweenness.ComputeStats(res.Centralities, res.ExecutionTime)
		writeOK(c, StatsData{
			RunID:           res.RunID,
			NodeCount:       res.NodeCount,
			SourceCount:     res.SourceCount,
			Min:             stats.Min,
			Max:             stats.Max,
			Mean:            stats.Mean,
			StdDev:          stats.StdDev,
			P50:             stats.P50,
			P90:             stats.P90,
			P99:             stats.P99,
			BridgeNodes:     stats.BridgeNodes,
			ExecutionTimeMs: res.ExecutionTime.Milliseconds(),
		})
		return
	}

	raw := betweenness.Result{Centralities: res.Centralities}
	rows := betweenness.Stream(raw)
	if req.TopK > 0 {
		rows = betweenness.TopK(raw, req.TopK)
	}
	writeOK(c, StreamData{
		RunID:           res.RunID,
		NodeCount:       res.NodeCount,
		SourceCount:     res.SourceCount,
		Weighted:        res.Weighted,
		Normalized:      res.Normalized,
		ExecutionTimeMs: res.ExecutionTime.Milliseconds(),
		Centralities:    rows,
	})
}

// HandleHealth handles GET /v1/centrality/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		OK:   true,
		Op:   "health",
		Data: HealthData{Status: "healthy", Version: ServiceVersion},
	})
}

// runConfig overlays the request options on the configured defaults.
func (h *Handlers) runConfig(req BetweennessRequest) betweenness.Config {
	cfg := h.opts.Defaults
	if req.Direction != "" {
		cfg.Direction = req.Direction
	}
	if req.Concurrency > 0 {
		cfg.Concurrency = req.Concurrency
	}
	cfg.RelationshipWeightProperty = ""
	if req.Weighted {
		cfg.RelationshipWeightProperty = weightProperty
	}
	if req.SamplingStrategy != "" {
		cfg.SamplingStrategy = req.SamplingStrategy
	}
	if req.SamplingSize != nil {
		size := *req.SamplingSize
		cfg.SamplingSize = &size
	}
	if req.RandomSeed != nil {
		cfg.RandomSeed = *req.RandomSeed
	}
	cfg.Normalize = cfg.Normalize || req.Normalize
	return cfg
}

// buildGraph converts request edges into a frozen graph of at most maxNodes
// nodes.
func buildGraph(req BetweennessRequest, maxNodes int) (*graph.Graph, error) {
	b := graph.NewBuilder(req.NodeCount, graph.MaxNodes(maxNodes))
	for i, e := range req.Edges {
		from, err := nodeID(e[0])
		if err != nil {
			return nil, fmt.Errorf("edge %d: source: %w", i, err)
		}
		to, err := nodeID(e[1])
		if err != nil {
			return nil, fmt.Errorf("edge %d: target: %w", i, err)
		}
		weight := 1.0
		if len(e) == 3 {
			weight = e[2]
		}
		if err := b.AddEdge(from, to, weight); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}
	return b.Freeze(), nil
}

func nodeID(v float64) (int, error) {
	if v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v is not a node id", errInvalidEdge, v)
	}
	return int(v), nil
}

func writeOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{OK: true, Op: OpBetweenness, Data: data})
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, Response{
		OK:    false,
		Op:    OpBetweenness,
		Error: &ErrorBody{Code: code, Message: message},
	})
}

// getOrCreateRequestID returns the X-Request-ID header or a new UUID, and
// echoes it on the response.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
