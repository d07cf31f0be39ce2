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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialRuntime_KnownGraphs(t *testing.T) {
	tests := []struct {
		name      string
		nodeCount int
		neighbors func(t *testing.T) Neighbors
		divisor   float64
		want      []float64
	}{
		{
			name:      "undirected star",
			nodeCount: 5,
			neighbors: func(t *testing.T) Neighbors {
				return undirected(t, 5, [2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3}, [2]int{0, 4})
			},
			divisor: 2,
			want:    []float64{6, 0, 0, 0, 0},
		},
		{
			name:      "undirected path",
			nodeCount: 3,
			neighbors: func(t *testing.T) Neighbors {
				return undirected(t, 3, [2]int{0, 1}, [2]int{1, 2})
			},
			divisor: 2,
			want:    []float64{0, 1, 0},
		},
		{
			name:      "directed path",
			nodeCount: 3,
			neighbors: func(t *testing.T) Neighbors {
				return directed(t, 3, [2]int{0, 1}, [2]int{1, 2})
			},
			divisor: 1,
			want:    []float64{0, 1, 0},
		},
		{
			name:      "complete graph K4",
			nodeCount: 4,
			neighbors: func(t *testing.T) Neighbors {
				return undirected(t, 4,
					[2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3},
					[2]int{1, 2}, [2]int{1, 3}, [2]int{2, 3})
			},
			divisor: 2,
			want:    []float64{0, 0, 0, 0},
		},
		{
			name:      "diamond",
			nodeCount: 4,
			neighbors: func(t *testing.T) Neighbors {
				return undirected(t, 4, [2]int{0, 1}, [2]int{0, 2}, [2]int{1, 3}, [2]int{2, 3})
			},
			divisor: 2,
			want:    []float64{0.5, 0.5, 0.5, 0.5},
		},
		{
			name:      "single edge",
			nodeCount: 2,
			neighbors: func(t *testing.T) Neighbors {
				return undirected(t, 2, [2]int{0, 1})
			},
			divisor: 2,
			want:    []float64{0, 0},
		},
		{
			name:      "isolated nodes",
			nodeCount: 3,
			neighbors: func(t *testing.T) Neighbors {
				return undirected(t, 3)
			},
			divisor: 2,
			want:    []float64{0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSequentialRuntime(tt.nodeCount).Compute(tt.nodeCount, tt.divisor, tt.neighbors(t))
			requireScoresInDelta(t, tt.want, got.Centralities)
		})
	}
}

func TestSequentialRuntime_TriangleNonNegative(t *testing.T) {
	neighbors := undirected(t, 3, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 0})
	got := NewSequentialRuntime(3).Compute(3, 2, neighbors)

	for i, s := range got.Centralities {
		assert.GreaterOrEqualf(t, s, 0.0, "node %d", i)
	}
}

func TestSequentialRuntime_ZeroDivisorLeavesRawScores(t *testing.T) {
	neighbors := undirected(t, 3, [2]int{0, 1}, [2]int{1, 2})
	got := NewSequentialRuntime(3).Compute(3, 0, neighbors)

	requireScoresInDelta(t, []float64{0, 2, 0}, got.Centralities)
}

func TestSequentialRuntime_ReuseAcrossSizes(t *testing.T) {
	r := NewSequentialRuntime(0)

	first := r.Compute(3, 2, undirected(t, 3, [2]int{0, 1}, [2]int{1, 2}))
	second := r.Compute(5, 2, undirected(t, 5, [2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3}, [2]int{0, 4}))
	third := r.Compute(3, 2, undirected(t, 3, [2]int{0, 1}, [2]int{1, 2}))

	requireScoresInDelta(t, []float64{0, 1, 0}, first.Centralities)
	requireScoresInDelta(t, []float64{6, 0, 0, 0, 0}, second.Centralities)
	requireScoresInDelta(t, first.Centralities, third.Centralities)

	// The returned slice is a copy.
	first.Centralities[1] = 42
	again := r.Compute(3, 2, undirected(t, 3, [2]int{0, 1}, [2]int{1, 2}))
	assert.InDelta(t, 1.0, again.Centralities[1], scoreTolerance)
}

func TestSequentialRuntime_EmptyGraph(t *testing.T) {
	got := NewSequentialRuntime(0).Compute(0, 2, func(int) []int { return nil })
	require.NotNil(t, got.Centralities)
	assert.Empty(t, got.Centralities)
}

func TestSequentialRuntime_IgnoresOutOfRangeNeighbors(t *testing.T) {
	neighbors := func(v int) []int {
		switch v {
		case 0:
			return []int{1, 7, -1}
		case 1:
			return []int{0, 2}
		case 2:
			return []int{1}
		}
		return nil
	}
	got := NewSequentialRuntime(3).Compute(3, 2, neighbors)
	requireScoresInDelta(t, []float64{0, 1, 0}, got.Centralities)
}
