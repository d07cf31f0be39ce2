// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/centrality/services/centrality/betweenness"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validFormat(format string) bool {
	switch format {
	case formatText, formatJSON, formatYAML:
		return true
	default:
		return false
	}
}

type streamReport struct {
	RunID           string              `json:"run_id" yaml:"run_id"`
	NodeCount       int                 `json:"node_count" yaml:"node_count"`
	SourceCount     int                 `json:"source_count" yaml:"source_count"`
	Weighted        bool                `json:"weighted" yaml:"weighted"`
	Normalized      bool                `json:"normalized" yaml:"normalized"`
	ExecutionTimeMs int64               `json:"execution_time_ms" yaml:"execution_time_ms"`
	Centralities    []betweenness.Score `json:"centralities" yaml:"centralities"`
}

type estimateReport struct {
	NodeCount         int    `json:"node_count" yaml:"node_count"`
	RelationshipCount int    `json:"relationship_count" yaml:"relationship_count"`
	Concurrency       int    `json:"concurrency" yaml:"concurrency"`
	MinBytes          uint64 `json:"min_bytes" yaml:"min_bytes"`
	MaxBytes          uint64 `json:"max_bytes" yaml:"max_bytes"`
}

// encode writes v as JSON or YAML. It reports false for the text format.
func encode(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

func writeStream(w io.Writer, format string, r streamReport) error {
	if done, err := encode(w, format, r); done {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tSCORE")
	for _, row := range r.Centralities {
		fmt.Fprintf(tw, "%d\t%g\n", row.NodeID, row.Score)
	}
	return tw.Flush()
}

func writeStats(w io.Writer, format string, s *betweenness.StatsResult) error {
	if done, err := encode(w, format, s); done {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run_id:\t%s\n", s.RunID)
	fmt.Fprintf(tw, "nodes:\t%d\n", s.NodeCount)
	fmt.Fprintf(tw, "sources:\t%d\n", s.SourceCount)
	fmt.Fprintf(tw, "min:\t%g\n", s.Min)
	fmt.Fprintf(tw, "max:\t%g\n", s.Max)
	fmt.Fprintf(tw, "mean:\t%g\n", s.Mean)
	fmt.Fprintf(tw, "stddev:\t%g\n", s.StdDev)
	fmt.Fprintf(tw, "p50:\t%g\n", s.P50)
	fmt.Fprintf(tw, "p90:\t%g\n", s.P90)
	fmt.Fprintf(tw, "p99:\t%g\n", s.P99)
	fmt.Fprintf(tw, "bridge_nodes:\t%d\n", s.BridgeNodes)
	fmt.Fprintf(tw, "elapsed:\t%s\n", s.ExecutionTime)
	return tw.Flush()
}

func writeEstimate(w io.Writer, format string, e estimateReport) error {
	if done, err := encode(w, format, e); done {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "nodes:\t%d\n", e.NodeCount)
	fmt.Fprintf(tw, "relationships:\t%d\n", e.RelationshipCount)
	fmt.Fprintf(tw, "concurrency:\t%d\n", e.Concurrency)
	fmt.Fprintf(tw, "min_bytes:\t%d\n", e.MinBytes)
	fmt.Fprintf(tw, "max_bytes:\t%d\n", e.MaxBytes)
	return tw.Flush()
}
