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

import "log/slog"

// SequentialRuntime is the single-threaded reference engine.
//
// Description:
//
//	Holds every per-source array at full node-count size and clears them
//	completely before each source. That keeps the code obviously correct at
//	the price of an O(n) reset per source, which is why the parallel engines
//	reset sparsely instead.
//
// Thread Safety: NOT safe for concurrent use. A runtime may be reused for
// consecutive Compute calls.
type SequentialRuntime struct {
	centralities  []float64
	sigma         []uint64
	delta         []float64
	distances     []int32
	predecessors  [][]int
	backwardNodes []int
	queue         []int
}

// NewSequentialRuntime allocates a runtime sized for nodeCount nodes.
func NewSequentialRuntime(nodeCount int) *SequentialRuntime {
	r := &SequentialRuntime{}
	r.resize(nodeCount)
	return r
}

func (r *SequentialRuntime) resize(nodeCount int) {
	if nodeCount < 0 {
		nodeCount = 0
	}
	if len(r.sigma) == nodeCount {
		return
	}
	r.centralities = make([]float64, nodeCount)
	r.sigma = make([]uint64, nodeCount)
	r.delta = make([]float64, nodeCount)
	r.distances = make([]int32, nodeCount)
	r.predecessors = make([][]int, nodeCount)
	r.backwardNodes = make([]int, 0, nodeCount)
	r.queue = make([]int, 0, nodeCount)
}

// Compute runs Brandes' algorithm from every node.
//
// Description:
//
//	For each source s in [0, nodeCount): BFS forward phase counting shortest
//	paths and predecessors, then the backward phase accumulating dependencies
//	into the score of every node other than s. When divisor != 0 every score
//	is divided by it; callers pass 2 for undirected traversal, which visits
//	each pair in both directions.
//
// Inputs:
//
//   - nodeCount: Number of nodes. The runtime is resized if needed.
//   - divisor: Normalisation divisor. 0 leaves scores untouched.
//   - neighbors: Adjacency function. Must not be nil when nodeCount > 0.
//
// Outputs:
//
//   - Result: Scores of length nodeCount. The slice is a copy.
//
// Complexity: O(V * (V + E)) time, O(V + E) memory.
func (r *SequentialRuntime) Compute(nodeCount int, divisor float64, neighbors Neighbors) Result {
	r.resize(nodeCount)
	for i := range r.centralities {
		r.centralities[i] = 0
	}

	for source := 0; source < nodeCount; source++ {
		r.forwardPhase(source, nodeCount, neighbors)
		r.backwardPhase(source)
	}

	out := make([]float64, nodeCount)
	copy(out, r.centralities)
	if divisor != 0 {
		for i := range out {
			out[i] /= divisor
		}
	}

	slog.Debug("sequential betweenness completed",
		slog.Int("node_count", nodeCount),
		slog.Float64("divisor", divisor),
	)
	return Result{Centralities: out}
}

func (r *SequentialRuntime) forwardPhase(source, nodeCount int, neighbors Neighbors) {
	for i := range r.sigma {
		r.sigma[i] = 0
		r.distances[i] = -1
		r.predecessors[i] = r.predecessors[i][:0]
	}
	r.backwardNodes = r.backwardNodes[:0]
	r.queue = r.queue[:0]

	r.sigma[source] = 1
	r.distances[source] = 0
	r.queue = append(r.queue, source)

	for head := 0; head < len(r.queue); head++ {
		node := r.queue[head]
		r.backwardNodes = append(r.backwardNodes, node)
		nextDist := r.distances[node] + 1
		nodeSigma := r.sigma[node]

		for _, w := range neighbors(node) {
			if w < 0 || w >= nodeCount {
				continue
			}
			if r.distances[w] < 0 {
				r.distances[w] = nextDist
				r.queue = append(r.queue, w)
			}
			if r.distances[w] == nextDist {
				r.sigma[w] = saturatingAdd(r.sigma[w], nodeSigma)
				r.predecessors[w] = append(r.predecessors[w], node)
			}
		}
	}
}

func (r *SequentialRuntime) backwardPhase(source int) {
	for i := range r.delta {
		r.delta[i] = 0
	}

	for i := len(r.backwardNodes) - 1; i >= 0; i-- {
		node := r.backwardNodes[i]
		if node == source {
			continue
		}

		nodeSigma := float64(r.sigma[node])
		coefficient := 1 + r.delta[node]
		for _, pred := range r.predecessors[node] {
			r.delta[pred] += float64(r.sigma[pred]) / nodeSigma * coefficient
		}
		r.centralities[node] += r.delta[node]
	}
}
