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
	"github.com/AleutianAI/centrality/services/centrality/betweenness"
)

// Response modes for BetweennessRequest.Mode.
const (
	ModeStream   = "stream"
	ModeStats    = "stats"
	ModeEstimate = "estimate"
)

// Error codes carried in ErrorBody.Code.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeExecutionError = "EXECUTION_ERROR"
	CodeTerminated     = "TERMINATED"
)

// OpBetweenness is the op name of the betweenness endpoint.
const OpBetweenness = "betweenness"

// BetweennessRequest is the body of POST /v1/centrality/betweenness.
//
// Edges are [from, to] or [from, to, weight] triples. Node ids must be
// non-negative integers. Zero-valued options fall back to the server's
// configured defaults.
type BetweennessRequest struct {
	Edges [][]float64 `json:"edges" binding:"required,dive,min=2,max=3"`

	// NodeCount fixes the node range to [0, NodeCount). 0 infers it from
	// the largest id in Edges.
	NodeCount int `json:"node_count" binding:"gte=0"`

	Direction        string  `json:"direction" binding:"omitempty,oneof=outgoing incoming both"`
	Concurrency      int     `json:"concurrency" binding:"gte=0"`
	Weighted         bool    `json:"weighted"`
	SamplingStrategy string  `json:"sampling_strategy" binding:"omitempty,oneof=all random_degree"`
	SamplingSize     *int    `json:"sampling_size" binding:"omitempty,gt=0"`
	RandomSeed       *uint64 `json:"random_seed"`
	Mode             string  `json:"mode" binding:"omitempty,oneof=stream stats estimate"`
	Normalize        bool    `json:"normalize"`

	// TopK limits stream rows to the K highest scores. 0 returns all.
	TopK int `json:"top_k" binding:"gte=0"`
}

// Response is the envelope of every centrality response.
type Response struct {
	OK    bool       `json:"ok"`
	Op    string     `json:"op"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed operation.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StreamData is the data of a stream-mode response.
type StreamData struct {
	RunID           string              `json:"run_id"`
	NodeCount       int                 `json:"node_count"`
	SourceCount     int                 `json:"source_count"`
	Weighted        bool                `json:"weighted"`
	Normalized      bool                `json:"normalized"`
	ExecutionTimeMs int64               `json:"execution_time_ms"`
	Centralities    []betweenness.Score `json:"centralities"`
}

// StatsData is the data of a stats-mode response.
type StatsData struct {
	RunID           string  `json:"run_id"`
	NodeCount       int     `json:"node_count"`
	SourceCount     int     `json:"source_count"`
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	Mean            float64 `json:"mean"`
	StdDev          float64 `json:"stddev"`
	P50             float64 `json:"p50"`
	P90             float64 `json:"p90"`
	P99             float64 `json:"p99"`
	BridgeNodes     int     `json:"bridge_nodes"`
	ExecutionTimeMs int64   `json:"execution_time_ms"`
}

// EstimateData is the data of an estimate-mode response.
type EstimateData struct {
	NodeCount         int    `json:"node_count"`
	RelationshipCount int    `json:"relationship_count"`
	Concurrency       int    `json:"concurrency"`
	MinBytes          uint64 `json:"min_bytes"`
	MaxBytes          uint64 `json:"max_bytes"`
}

// HealthData is the data of GET /v1/centrality/health.
type HealthData struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
