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
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/centrality/services/centrality/graph"
)

// scoreTolerance is the agreement bound between engines.
const scoreTolerance = 1e-9

type testEdge struct {
	from, to int
	weight   float64
}

// buildGraph freezes a graph with nodeCount nodes.
func buildGraph(t *testing.T, nodeCount int, edges []testEdge) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder(nodeCount)
	for _, e := range edges {
		require.NoError(t, b.AddEdge(e.from, e.to, e.weight))
	}
	return b.Freeze()
}

// unit builds unit-weight edges from pairs.
func unit(pairs ...[2]int) []testEdge {
	out := make([]testEdge, len(pairs))
	for i, p := range pairs {
		out[i] = testEdge{from: p[0], to: p[1], weight: 1}
	}
	return out
}

// undirected returns the BFS neighbor function of an undirected graph.
func undirected(t *testing.T, nodeCount int, pairs ...[2]int) Neighbors {
	return buildGraph(t, nodeCount, unit(pairs...)).Neighbors(graph.Undirected)
}

// directed returns the BFS neighbor function of a directed graph.
func directed(t *testing.T, nodeCount int, pairs ...[2]int) Neighbors {
	return buildGraph(t, nodeCount, unit(pairs...)).Neighbors(graph.Natural)
}

// allSources returns 0..n-1.
func allSources(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// randomEdges draws m edges over n nodes with weights in [1, 4).
func randomEdges(n, m int, seed uint64, integerWeights bool) []testEdge {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	edges := make([]testEdge, 0, m)
	for len(edges) < m {
		from, to := rng.IntN(n), rng.IntN(n)
		if from == to {
			continue
		}
		w := 1 + 3*rng.Float64()
		if integerWeights {
			w = float64(1 + rng.IntN(3))
		}
		edges = append(edges, testEdge{from: from, to: to, weight: w})
	}
	return edges
}

func requireScoresInDelta(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.InDeltaf(t, want[i], got[i], scoreTolerance, "node %d", i)
	}
}
