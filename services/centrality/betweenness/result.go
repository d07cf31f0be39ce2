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
	"sort"

	"github.com/AleutianAI/centrality/services/centrality/collections"
)

// Score is one row of a streamed result.
type Score struct {
	NodeID int64   `json:"node_id" yaml:"node_id"`
	Score  float64 `json:"score" yaml:"score"`
}

// readOut copies the accumulator into a fresh slice, dividing by divisor
// when it is non-zero.
func readOut(acc *collections.AtomicDoubleArray, divisor float64) []float64 {
	out := acc.ToSlice()
	if divisor != 0 {
		for i := range out {
			out[i] /= divisor
		}
	}
	return out
}

// Normalize scales raw scores into [0, 1] by the number of node pairs that
// exclude the scored node.
//
// Description:
//
//	Directed: divides by (n-1)(n-2). Undirected: divides by (n-1)(n-2)/2.
//	Graphs with fewer than three nodes have no such pairs and yield zeros.
//
// Outputs:
//
//   - []float64: A new slice; scores is not modified.
func Normalize(scores []float64, nodeCount int, directed bool) []float64 {
	out := make([]float64, len(scores))
	if nodeCount < 3 {
		return out
	}
	n := float64(nodeCount)
	scale := (n - 1) * (n - 2)
	if !directed {
		scale /= 2
	}
	for i, s := range scores {
		out[i] = s / scale
	}
	return out
}

// Stream converts a result into per-node rows ordered by node id.
func Stream(result Result) []Score {
	rows := make([]Score, len(result.Centralities))
	for i, s := range result.Centralities {
		rows[i] = Score{NodeID: int64(i), Score: s}
	}
	return rows
}

// TopK returns the k highest scoring nodes, score descending then node id
// ascending. k <= 0 or k >= len returns every node in that order.
func TopK(result Result, k int) []Score {
	rows := Stream(result)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].NodeID < rows[j].NodeID
	})
	if k > 0 && k < len(rows) {
		rows = rows[:k]
	}
	return rows
}
