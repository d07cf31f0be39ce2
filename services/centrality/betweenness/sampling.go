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
	"fmt"
	"math/rand/v2"
	"slices"
)

// SelectSources picks the source nodes of a run.
//
// Description:
//
//	SamplingAll (or ""): every node when size is nil or >= nodeCount,
//	otherwise the first size entries of a seeded permutation.
//	SamplingRandomDegree: size distinct nodes drawn without replacement
//	with probability proportional to degree. Nodes of degree zero are only
//	picked once every positive-degree node is taken; when all degrees are
//	zero the draw is uniform.
//
//	The same (nodeCount, degrees, strategy, size, seed) always yields the
//	same sources.
//
// Inputs:
//
//   - nodeCount: Number of nodes.
//   - degree: Degree of a node. Only used by SamplingRandomDegree; may be
//     nil for SamplingAll.
//   - strategy: SamplingAll or SamplingRandomDegree.
//   - size: Number of sources, nil for all. Must be positive when set.
//   - seed: Random seed.
//
// Outputs:
//
//   - []int: Source ids sorted ascending.
//   - error: ErrInvalidConfig for an unknown strategy or non-positive size.
func SelectSources(nodeCount int, degree func(int) int, strategy string, size *int, seed uint64) ([]int, error) {
	if nodeCount <= 0 {
		return []int{}, nil
	}
	if size != nil && *size <= 0 {
		return nil, fmt.Errorf("%w: sampling size must be positive, got %d", ErrInvalidConfig, *size)
	}

	k := nodeCount
	if size != nil && *size < nodeCount {
		k = *size
	}

	switch strategy {
	case "", SamplingAll:
		if k == nodeCount {
			all := make([]int, nodeCount)
			for i := range all {
				all[i] = i
			}
			return all, nil
		}
		rng := newRand(seed)
		picked := rng.Perm(nodeCount)[:k]
		slices.Sort(picked)
		return picked, nil

	case SamplingRandomDegree:
		if degree == nil {
			return nil, fmt.Errorf("%w: random_degree sampling requires degrees", ErrInvalidConfig)
		}
		return sampleByDegree(nodeCount, degree, k, newRand(seed)), nil

	default:
		return nil, fmt.Errorf("%w: unknown sampling strategy %q", ErrInvalidConfig, strategy)
	}
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// sampleByDegree draws k distinct nodes weighted by degree.
//
// Uses exponential keys (Efraimidis-Spirakis): each node with weight w > 0
// gets key E/w with E ~ Exp(1); the k smallest keys win.
func sampleByDegree(nodeCount int, degree func(int) int, k int, rng *rand.Rand) []int {
	type keyed struct {
		node int
		key  float64
	}

	positive := make([]keyed, 0, nodeCount)
	zero := make([]int, 0)
	for v := 0; v < nodeCount; v++ {
		d := degree(v)
		if d > 0 {
			positive = append(positive, keyed{node: v, key: rng.ExpFloat64() / float64(d)})
		} else {
			zero = append(zero, v)
		}
	}

	slices.SortFunc(positive, func(a, b keyed) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		default:
			return a.node - b.node
		}
	})

	picked := make([]int, 0, k)
	for _, p := range positive {
		if len(picked) == k {
			break
		}
		picked = append(picked, p.node)
	}
	if remaining := k - len(picked); remaining > 0 {
		rng.Shuffle(len(zero), func(i, j int) { zero[i], zero[j] = zero[j], zero[i] })
		picked = append(picked, zero[:remaining]...)
	}

	slices.Sort(picked)
	return picked
}
