// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"fmt"
	"strings"
)

// Orientation selects how stored relationships are traversed.
type Orientation int

const (
	// Natural follows relationships from source to target.
	Natural Orientation = iota

	// Reverse follows relationships from target to source.
	Reverse

	// Undirected follows every relationship in both directions.
	Undirected
)

// String returns the direction name used in configuration.
func (o Orientation) String() string {
	switch o {
	case Natural:
		return "outgoing"
	case Reverse:
		return "incoming"
	case Undirected:
		return "both"
	default:
		return "unknown"
	}
}

// ParseOrientation maps a direction string to an Orientation.
//
// Accepts "outgoing", "incoming" and "both" (case-insensitive). An empty
// string means "both".
func ParseOrientation(direction string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "outgoing", "natural":
		return Natural, nil
	case "incoming", "reverse":
		return Reverse, nil
	case "both", "undirected", "":
		return Undirected, nil
	default:
		return Undirected, fmt.Errorf("%w: %q", ErrUnknownOrientation, direction)
	}
}

// WeightedNeighbor is one traversable relationship end.
type WeightedNeighbor struct {
	// Node is the neighbor id.
	Node int

	// Weight is the relationship weight. Unweighted relationships carry 1.
	Weight float64
}

type edge struct {
	from, to int
	weight   float64
}

// Builder accumulates relationships before freezing them into a Graph.
type Builder struct {
	nodeCount int
	fixed     bool
	maxNodes  int
	edges     []edge
	frozen    bool
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// MaxNodes caps the node range at n nodes, so ids must stay below n.
// 0 means unlimited.
func MaxNodes(n int) BuilderOption {
	return func(b *Builder) {
		b.maxNodes = n
	}
}

// NewBuilder creates a builder.
//
// Inputs:
//
//   - nodeCount: If > 0 the node range is fixed to [0, nodeCount) and
//     AddEdge rejects ids outside it. If <= 0 the range grows to the largest
//     id seen.
//   - opts: Optional limits. A fixed nodeCount above MaxNodes is
//     clamped to the limit; callers that need an error check
//     ValidateNodeCount first.
func NewBuilder(nodeCount int, opts ...BuilderOption) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	if nodeCount > 0 {
		if b.maxNodes > 0 {
			nodeCount = min(nodeCount, b.maxNodes)
		}
		b.nodeCount = nodeCount
		b.fixed = true
	}
	return b
}

// ValidateNodeCount reports ErrNodeLimit when n nodes exceed maxNodes.
// maxNodes <= 0 disables the check.
func ValidateNodeCount(n, maxNodes int) error {
	if maxNodes > 0 && n > maxNodes {
		return fmt.Errorf("%w: %d nodes (limit %d)", ErrNodeLimit, n, maxNodes)
	}
	return nil
}

// AddEdge records a directed relationship from -> to with the given weight.
//
// Weights are stored as given; engines decide which weights are traversable.
// Parallel relationships are kept.
//
// Outputs:
//
//   - error: ErrGraphFrozen after Freeze, ErrInvalidNode for negative ids,
//     ErrNodeNotFound for ids outside a fixed range, ErrNodeLimit for ids at
//     or above the MaxNodes cap.
func (b *Builder) AddEdge(from, to int, weight float64) error {
	if b.frozen {
		return ErrGraphFrozen
	}
	if from < 0 || to < 0 {
		return fmt.Errorf("%w: %d -> %d", ErrInvalidNode, from, to)
	}
	if b.maxNodes > 0 && (from >= b.maxNodes || to >= b.maxNodes) {
		return fmt.Errorf("%w: %d -> %d (limit %d nodes)", ErrNodeLimit, from, to, b.maxNodes)
	}
	if b.fixed && (from >= b.nodeCount || to >= b.nodeCount) {
		return fmt.Errorf("%w: %d -> %d (node count %d)", ErrNodeNotFound, from, to, b.nodeCount)
	}
	if !b.fixed {
		b.nodeCount = max(b.nodeCount, from+1, to+1)
	}
	b.edges = append(b.edges, edge{from: from, to: to, weight: weight})
	return nil
}

// Freeze builds the immutable Graph. Further AddEdge calls fail with
// ErrGraphFrozen.
func (b *Builder) Freeze() *Graph {
	b.frozen = true

	n := b.nodeCount
	g := &Graph{
		nodeCount:         n,
		relationshipCount: len(b.edges),
	}
	g.adj[Natural] = buildCSR(n, b.edges, func(e edge) (int, int) { return e.from, e.to }, nil)
	g.adj[Reverse] = buildCSR(n, b.edges, func(e edge) (int, int) { return e.to, e.from }, nil)
	// Self loops already appear once from the natural pass.
	g.adj[Undirected] = buildCSR(n, b.edges, func(e edge) (int, int) { return e.from, e.to },
		func(e edge) (int, int, bool) { return e.to, e.from, e.from != e.to })
	return g
}

// csr is a compressed sparse row adjacency. targets and arcs hold the same
// relationships so both neighbor views are allocation-free.
type csr struct {
	offsets []int
	targets []int
	arcs    []WeightedNeighbor
}

func buildCSR(
	n int,
	edges []edge,
	primary func(edge) (int, int),
	secondary func(edge) (int, int, bool),
) csr {
	offsets := make([]int, n+1)
	for _, e := range edges {
		src, _ := primary(e)
		offsets[src+1]++
		if secondary != nil {
			if s, _, ok := secondary(e); ok {
				offsets[s+1]++
			}
		}
	}
	for i := 0; i < n; i++ {
		offsets[i+1] += offsets[i]
	}

	total := offsets[n]
	targets := make([]int, total)
	arcs := make([]WeightedNeighbor, total)
	next := make([]int, n)
	copy(next, offsets[:n])

	place := func(src, dst int, w float64) {
		pos := next[src]
		targets[pos] = dst
		arcs[pos] = WeightedNeighbor{Node: dst, Weight: w}
		next[src]++
	}
	for _, e := range edges {
		src, dst := primary(e)
		place(src, dst, e.weight)
		if secondary != nil {
			if s, d, ok := secondary(e); ok {
				place(s, d, e.weight)
			}
		}
	}

	return csr{offsets: offsets, targets: targets, arcs: arcs}
}

// Graph is an immutable adjacency structure in three orientations.
//
// Thread Safety: Safe for concurrent use.
type Graph struct {
	nodeCount         int
	relationshipCount int
	adj               [3]csr
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return g.nodeCount
}

// RelationshipCount returns the number of stored (directed) relationships.
func (g *Graph) RelationshipCount() int {
	return g.relationshipCount
}

// Degree returns the number of relationship ends traversable from node in
// orientation o. Out-of-range nodes have degree 0.
func (g *Graph) Degree(node int, o Orientation) int {
	if node < 0 || node >= g.nodeCount {
		return 0
	}
	a := &g.adj[o]
	return a.offsets[node+1] - a.offsets[node]
}

// Neighbors returns an unweighted neighbor function for orientation o.
//
// The returned slices alias the graph's storage and must not be modified.
// Out-of-range nodes yield nil.
func (g *Graph) Neighbors(o Orientation) func(node int) []int {
	a := &g.adj[o]
	return func(node int) []int {
		if node < 0 || node >= g.nodeCount {
			return nil
		}
		return a.targets[a.offsets[node]:a.offsets[node+1]]
	}
}

// WeightedNeighbors returns a weighted neighbor function for orientation o.
//
// The returned slices alias the graph's storage and must not be modified.
func (g *Graph) WeightedNeighbors(o Orientation) func(node int) []WeightedNeighbor {
	a := &g.adj[o]
	return func(node int) []WeightedNeighbor {
		if node < 0 || node >= g.nodeCount {
			return nil
		}
		return a.arcs[a.offsets[node]:a.offsets[node+1]]
	}
}
