// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api exposes betweenness centrality over HTTP.
//
// Every response uses the Response envelope:
//
//	{"ok": true,  "op": "betweenness", "data": {...}}
//	{"ok": false, "op": "betweenness", "error": {"code": "...", "message": "..."}}
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/centrality/services/centrality/telemetry"
)

// RegisterRoutes registers the centrality endpoints under rg.
//
// Endpoints:
//
//	POST /v1/centrality/betweenness - Compute betweenness centrality
//	GET  /v1/centrality/health - Health check
//
// Example:
//
//	handlers := api.NewHandlers(api.Options{Defaults: cfg.Betweenness})
//	v1 := router.Group("/v1")
//	api.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	centrality := rg.Group("/centrality")
	{
		centrality.POST("/betweenness", handlers.HandleBetweenness)
		centrality.GET("/health", handlers.HandleHealth)
	}
}

// NewRouter creates a gin engine with recovery, tracing and request
// metrics, the /v1 routes and, when available, GET /metrics.
func NewRouter(serviceName string, handlers *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(metricsMiddleware(handlers.opts.Metrics))

	v1 := router.Group("/v1")
	RegisterRoutes(v1, handlers)

	metricsHandler := handlers.opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = telemetry.MetricsHandler()
	}
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}
	return router
}

// metricsMiddleware records request count and latency per route.
func metricsMiddleware(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTP(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
