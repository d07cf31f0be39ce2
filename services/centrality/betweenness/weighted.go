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

	"github.com/emirpasic/gods/trees/binaryheap"

	"github.com/AleutianAI/centrality/services/centrality/collections"
	"github.com/AleutianAI/centrality/services/centrality/concurrency"
)

// ComputeParallelWeighted computes Dijkstra-based betweenness from the given
// sources using up to workers goroutines.
//
// Description:
//
//	Same contract and substrate as ComputeParallelUnweighted; the forward
//	phase is Dijkstra over a binary min-heap keyed by tentative distance.
//	Heap entries may go stale when a node's distance improves; an entry is
//	dropped when its distance exceeds the node's best by more than Epsilon.
//
//	Relaxing v -> w with alt = dist[v] + weight:
//	  - w unseen: its bookkeeping is cleared and w joins the visited list.
//	  - alt + Epsilon < dist[w]: w gets distance alt, predecessors [v],
//	    sigma[v], and is pushed.
//	  - |alt - dist[w]| <= Epsilon: v is appended to w's predecessors and
//	    sigma[w] += sigma[v] (saturating).
//
//	Weights that are negative, NaN or infinite are never traversed.
//
// Outputs:
//
//   - Result: Scores of length nodeCount; empty when nodeCount == 0 or
//     sources is empty.
//   - error: concurrency.ErrTerminated if flag stopped.
//
// Thread Safety: Safe for concurrent use; every call owns its state.
//
// Complexity: O(S * (E + V) log V / P) time.
func ComputeParallelWeighted(
	nodeCount int,
	sources []int,
	divisor float64,
	workers int,
	flag concurrency.TerminationFlag,
	onSourceDone func(),
	neighbors WeightedNeighbors,
) (Result, error) {
	return computeParallel("weighted", nodeCount, sources, divisor, workers, flag, onSourceDone,
		func() *weightedState { return newWeightedState(nodeCount, neighbors) })
}

type heapItem struct {
	dist float64
	node int
}

// heapItemComparator orders by ascending distance; equal distances pop the
// higher node id first.
func heapItemComparator(a, b interface{}) int {
	x := a.(heapItem)
	y := b.(heapItem)
	switch {
	case x.dist < y.dist:
		return -1
	case x.dist > y.dist:
		return 1
	case x.node > y.node:
		return -1
	case x.node < y.node:
		return 1
	default:
		return 0
	}
}

// weightedState is the reusable scratch of one worker.
type weightedState struct {
	nodeCount    int
	neighbors    WeightedNeighbors
	sigma        []uint64
	delta        []float64
	distances    []float64
	predecessors [][]int
	stack        []int
	heap         *binaryheap.Heap
	visited      []int
}

func newWeightedState(nodeCount int, neighbors WeightedNeighbors) *weightedState {
	distances := make([]float64, nodeCount)
	for i := range distances {
		distances[i] = math.Inf(1)
	}
	worklist := min(nodeCount, initialWorklistCap)
	return &weightedState{
		nodeCount:    nodeCount,
		neighbors:    neighbors,
		sigma:        make([]uint64, nodeCount),
		delta:        make([]float64, nodeCount),
		distances:    distances,
		predecessors: make([][]int, nodeCount),
		stack:        make([]int, 0, worklist),
		heap:         binaryheap.NewWith(heapItemComparator),
		visited:      make([]int, 0, worklist),
	}
}

func (s *weightedState) runSource(source int, flag concurrency.TerminationFlag, acc *collections.AtomicDoubleArray) bool {
	if !flag.Running() {
		return false
	}

	s.stack = s.stack[:0]
	s.heap.Clear()
	s.visited = s.visited[:0]

	s.sigma[source] = 1
	s.delta[source] = 0
	s.distances[source] = 0
	s.predecessors[source] = s.predecessors[source][:0]
	s.visited = append(s.visited, source)
	s.heap.Push(heapItem{dist: 0, node: source})

	for !s.heap.Empty() {
		if !flag.Running() {
			return false
		}
		top, _ := s.heap.Pop()
		item := top.(heapItem)
		d, v := item.dist, item.node
		if d > s.distances[v]+Epsilon {
			continue
		}

		s.stack = append(s.stack, v)
		vSigma := s.sigma[v]
		if vSigma == 0 {
			continue
		}

		for _, arc := range s.neighbors(v) {
			w := arc.Node
			if w < 0 || w >= s.nodeCount {
				continue
			}
			if !traversable(arc.Weight) {
				continue
			}
			alt := d + arc.Weight

			if math.IsInf(s.distances[w], 1) {
				// First time seen in this source run.
				s.predecessors[w] = s.predecessors[w][:0]
				s.sigma[w] = 0
				s.delta[w] = 0
				s.visited = append(s.visited, w)
			}

			switch {
			case alt+Epsilon < s.distances[w]:
				s.distances[w] = alt
				s.heap.Push(heapItem{dist: alt, node: w})
				s.predecessors[w] = append(s.predecessors[w][:0], v)
				s.sigma[w] = vSigma
			case math.Abs(alt-s.distances[w]) <= Epsilon:
				s.predecessors[w] = append(s.predecessors[w], v)
				s.sigma[w] = saturatingAdd(s.sigma[w], vSigma)
			}
		}
	}

	if !backwardPass(source, s.stack, s.sigma, s.delta, s.predecessors, flag, acc) {
		return false
	}

	for _, v := range s.visited {
		s.distances[v] = math.Inf(1)
		s.sigma[v] = 0
		s.delta[v] = 0
		s.predecessors[v] = s.predecessors[v][:0]
	}
	return true
}
