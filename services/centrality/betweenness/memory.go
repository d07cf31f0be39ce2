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

// memoryOverheadBytes is the fixed allowance for runtime bookkeeping.
const memoryOverheadBytes = 1 << 20

// MemoryRange is a byte estimate of a run's peak memory.
type MemoryRange struct {
	MinBytes uint64 `json:"min_bytes" yaml:"min_bytes"`
	MaxBytes uint64 `json:"max_bytes" yaml:"max_bytes"`
}

// EstimateMemory estimates the memory a run would need.
//
// Description:
//
//	min = scores + workers * perWorker + overhead, where scores is 8 bytes
//	per node and perWorker covers sigma, delta and distances (8 bytes each
//	when weighted, 4 for the BFS distance) plus three 8-byte worklists per
//	node. max adds 8 bytes per relationship for predecessor lists and a 20%
//	margin over min.
func EstimateMemory(nodeCount, relationshipCount, concurrency int, weighted bool) MemoryRange {
	n := uint64(max(nodeCount, 0))
	rels := uint64(max(relationshipCount, 0))
	workers := uint64(max(concurrency, 1))

	scores := n * 8
	perNodeBase := uint64(8 + 8 + 4)
	if weighted {
		perNodeBase = 8 + 8 + 8
	}
	perNodeWorklists := uint64(3 * 8)
	perWorker := n * (perNodeBase + perNodeWorklists)
	predecessors := rels * 8

	minBytes := scores + workers*perWorker + memoryOverheadBytes
	return MemoryRange{
		MinBytes: minBytes,
		MaxBytes: minBytes + predecessors + minBytes/5,
	}
}
