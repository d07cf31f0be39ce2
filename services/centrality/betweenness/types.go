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
	"math"

	"github.com/AleutianAI/centrality/services/centrality/graph"
)

// Epsilon is the tolerance used by the weighted engine to detect equal
// path lengths and stale heap entries.
const Epsilon = 1e-12

// Neighbors enumerates the outgoing neighbors of a node.
//
// Implementations must be pure and safe to call from many goroutines at
// once. Returned ids outside [0, nodeCount) are ignored by the engines.
type Neighbors func(node int) []int

// WeightedNeighbors enumerates outgoing (neighbor, weight) pairs of a node.
//
// Only finite, non-negative weights are traversed.
type WeightedNeighbors func(node int) []graph.WeightedNeighbor

// Result holds raw per-node scores, index-aligned to node ids.
type Result struct {
	Centralities []float64
}

// saturatingAdd returns a+b, capped at math.MaxUint64.
func saturatingAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return math.MaxUint64
	}
	return sum
}

// traversable reports whether the weighted engine may relax an edge.
func traversable(weight float64) bool {
	return weight >= 0 && !math.IsInf(weight, 1) && !math.IsNaN(weight)
}
