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
	"github.com/AleutianAI/centrality/services/centrality/collections"
	"github.com/AleutianAI/centrality/services/centrality/concurrency"
)

// initialWorklistCap bounds the up-front capacity of per-worker worklists.
const initialWorklistCap = 1024

// ComputeParallelUnweighted computes BFS-based betweenness from the given
// sources using up to workers goroutines.
//
// Description:
//
//	Each source is one index of a parallel-for. A worker runs the forward
//	BFS and backward accumulation on its own scratch arrays, then atomically
//	adds delta[w] into the shared accumulator for every visited w other than
//	the source. Scratch arrays are reset only at the indices recorded in the
//	worker's visited list, so a source costs O(reached nodes + edges) rather
//	than O(nodeCount).
//
// Inputs:
//
//   - nodeCount: Number of nodes.
//   - sources: Source node ids. Ids outside [0, nodeCount) are skipped.
//   - divisor: Normalisation divisor. 0 leaves scores untouched.
//   - workers: Maximum worker goroutines; values < 1 mean 1.
//   - flag: Polled per source, per BFS dequeue and per backward pop. Nil
//     means "never stops".
//   - onSourceDone: Called once per completed source from whichever worker
//     completed it. May be nil.
//   - neighbors: Adjacency function, called concurrently.
//
// Outputs:
//
//   - Result: Scores of length nodeCount; empty when nodeCount == 0 or
//     sources is empty.
//   - error: concurrency.ErrTerminated if flag stopped. Partial scores are
//     discarded.
//
// Thread Safety: Safe for concurrent use; every call owns its state.
//
// Complexity: O(S * (V + E) / P) time for S sources on P workers;
// O(P * (V + E)) scratch memory.
func ComputeParallelUnweighted(
	nodeCount int,
	sources []int,
	divisor float64,
	workers int,
	flag concurrency.TerminationFlag,
	onSourceDone func(),
	neighbors Neighbors,
) (Result, error) {
	return computeParallel("unweighted", nodeCount, sources, divisor, workers, flag, onSourceDone,
		func() *unweightedState { return newUnweightedState(nodeCount, neighbors) })
}

// unweightedState is the reusable scratch of one worker.
type unweightedState struct {
	nodeCount    int
	neighbors    Neighbors
	sigma        []uint64
	delta        []float64
	distances    []int32
	predecessors [][]int
	stack        []int
	queue        []int
	visited      []int
}

func newUnweightedState(nodeCount int, neighbors Neighbors) *unweightedState {
	distances := make([]int32, nodeCount)
	for i := range distances {
		distances[i] = -1
	}
	worklist := min(nodeCount, initialWorklistCap)
	return &unweightedState{
		nodeCount:    nodeCount,
		neighbors:    neighbors,
		sigma:        make([]uint64, nodeCount),
		delta:        make([]float64, nodeCount),
		distances:    distances,
		predecessors: make([][]int, nodeCount),
		stack:        make([]int, 0, worklist),
		queue:        make([]int, 0, worklist),
		visited:      make([]int, 0, worklist),
	}
}

func (s *unweightedState) runSource(source int, flag concurrency.TerminationFlag, acc *collections.AtomicDoubleArray) bool {
	if !flag.Running() {
		return false
	}

	s.stack = s.stack[:0]
	s.queue = s.queue[:0]
	s.visited = s.visited[:0]

	s.sigma[source] = 1
	s.delta[source] = 0
	s.distances[source] = 0
	s.predecessors[source] = s.predecessors[source][:0]
	s.visited = append(s.visited, source)
	s.queue = append(s.queue, source)

	for head := 0; head < len(s.queue); head++ {
		if !flag.Running() {
			return false
		}
		v := s.queue[head]
		s.stack = append(s.stack, v)
		vSigma := s.sigma[v]
		if vSigma == 0 {
			continue
		}
		nextDist := s.distances[v] + 1

		for _, w := range s.neighbors(v) {
			if w < 0 || w >= s.nodeCount {
				continue
			}
			if s.distances[w] < 0 {
				// First time seen in this source run.
				s.distances[w] = nextDist
				s.sigma[w] = 0
				s.delta[w] = 0
				s.predecessors[w] = s.predecessors[w][:0]
				s.visited = append(s.visited, w)
				s.queue = append(s.queue, w)
			}
			if s.distances[w] == nextDist {
				s.sigma[w] = saturatingAdd(s.sigma[w], vSigma)
				s.predecessors[w] = append(s.predecessors[w], v)
			}
		}
	}

	if !backwardPass(source, s.stack, s.sigma, s.delta, s.predecessors, flag, acc) {
		return false
	}

	for _, v := range s.visited {
		s.distances[v] = -1
		s.sigma[v] = 0
		s.delta[v] = 0
		s.predecessors[v] = s.predecessors[v][:0]
	}
	return true
}
