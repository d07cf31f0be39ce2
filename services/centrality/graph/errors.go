// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides a compact, read-only adjacency structure that feeds
// neighbor-enumeration functions to the centrality engines.
//
// Nodes are dense integer ids in [0, NodeCount). Relationships are directed
// and optionally weighted; an Orientation chooses whether they are followed
// as stored, reversed, or in both directions.
//
// # Thread Safety
//
// Builder is NOT safe for concurrent use. It is designed for:
//   - Single-writer access during the build phase (AddEdge calls)
//   - Read-only access after Freeze() returns the Graph
//
// A frozen Graph can be read from any number of goroutines.
//
// # Lifecycle
//
//  1. Create with NewBuilder(nodeCount)
//  2. Add relationships with AddEdge()
//  3. Call Freeze() to obtain the immutable Graph
//  4. Hand Neighbors()/WeightedNeighbors() to an engine
package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph operations.
var (
	// ErrGraphFrozen is returned when attempting to modify a frozen builder.
	ErrGraphFrozen = errors.New("graph is frozen and cannot be modified")

	// ErrNodeNotFound is returned when a relationship references a node id
	// outside a fixed node range.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNodeLimit is returned when a node id or node count exceeds the
	// builder's maximum. It wraps ErrNodeNotFound.
	ErrNodeLimit = fmt.Errorf("%w: node limit exceeded", ErrNodeNotFound)

	// ErrInvalidNode is returned for negative node ids.
	ErrInvalidNode = errors.New("invalid node")

	// ErrUnknownOrientation is returned when a direction string is not one
	// of "outgoing", "incoming" or "both".
	ErrUnknownOrientation = errors.New("unknown orientation")

	// ErrParse is returned when an edge list line cannot be parsed.
	ErrParse = errors.New("edge list parse error")
)
