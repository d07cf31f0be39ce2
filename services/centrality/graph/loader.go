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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxLineBytes bounds a single edge list line.
const maxLineBytes = 1 << 20

// LoadOption configures LoadEdgeList.
type LoadOption func(*loadOptions)

type loadOptions struct {
	nodeCount     int
	maxNodes      int
	defaultWeight float64
}

// WithNodeCount fixes the node range to [0, n). Edges referencing ids outside
// the range fail with ErrNodeNotFound. Without it the range is inferred.
func WithNodeCount(n int) LoadOption {
	return func(o *loadOptions) {
		o.nodeCount = n
	}
}

// WithMaxNodes rejects edge lists whose node range would exceed n nodes
// with ErrNodeLimit. 0 means unlimited.
func WithMaxNodes(n int) LoadOption {
	return func(o *loadOptions) {
		o.maxNodes = n
	}
}

// WithDefaultWeight sets the weight used for lines without a third column.
func WithDefaultWeight(w float64) LoadOption {
	return func(o *loadOptions) {
		o.defaultWeight = w
	}
}

// LoadEdgeList reads a plain-text edge list and freezes it into a Graph.
//
// Description:
//
//	One relationship per line: "from to [weight]". Fields may be separated
//	by whitespace or commas. Blank lines and lines starting with '#' or '%'
//	are skipped. Weights parse with strconv.ParseFloat, so "NaN", "Inf" and
//	negative values load as-is and are filtered by the weighted engine.
//
// Inputs:
//
//   - r: Source of the edge list. Must not be nil.
//   - opts: Optional node count, node limit and default weight (1.0).
//
// Outputs:
//
//   - *Graph: The frozen graph.
//   - error: Wraps ErrParse with the 1-based line number, or a builder
//     error (ErrInvalidNode, ErrNodeNotFound, ErrNodeLimit).
//
// Example:
//
//	g, err := graph.LoadEdgeList(strings.NewReader("0 1\n1 2 2.5\n"))
func LoadEdgeList(r io.Reader, opts ...LoadOption) (*Graph, error) {
	options := loadOptions{defaultWeight: 1}
	for _, opt := range opts {
		opt(&options)
	}

	if err := ValidateNodeCount(options.nodeCount, options.maxNodes); err != nil {
		return nil, err
	}
	b := NewBuilder(options.nodeCount, MaxNodes(options.maxNodes))
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '%' {
			continue
		}

		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("%w: line %d: expected 2 or 3 fields, got %d", ErrParse, lineNo, len(fields))
		}

		from, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: source %q: %v", ErrParse, lineNo, fields[0], err)
		}
		to, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: target %q: %v", ErrParse, lineNo, fields[1], err)
		}
		weight := options.defaultWeight
		if len(fields) == 3 {
			weight, err = strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: weight %q: %v", ErrParse, lineNo, fields[2], err)
			}
		}

		if err := b.AddEdge(from, to, weight); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read edge list: %w", err)
	}

	return b.Freeze(), nil
}
