// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command centrality computes betweenness centrality from edge lists and
// serves it over HTTP.
//
// Usage:
//
//	centrality compute --input graph.txt
//	centrality compute --input graph.txt --mode stats --format yaml
//	centrality compute --input graph.txt --weighted --direction outgoing --top 10
//	centrality serve --addr :8080
//	centrality version
//
// Configuration is read from .centrality.yaml (working or home directory)
// or --config, then CENTRALITY_* environment variables, then flags.
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/centrality/health
//
//	# Betweenness of a star
//	curl -X POST http://localhost:8080/v1/centrality/betweenness \
//	  -H "Content-Type: application/json" \
//	  -d '{"edges": [[0,1],[0,2],[0,3]], "mode": "stats"}'
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"github.com/AleutianAI/centrality/services/centrality/concurrency"
)

// exitTerminated is the exit code of a run stopped by a signal.
const exitTerminated = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(viper.New()).ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

// exitCode maps a command error to a process exit code, printing it.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	if errors.Is(err, concurrency.ErrTerminated) {
		return exitTerminated
	}
	return 1
}
