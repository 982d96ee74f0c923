// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tireder/betting-tips/services/panel/config"
	"github.com/tireder/betting-tips/services/panel/handlers"
	"github.com/tireder/betting-tips/services/panel/middleware"
	"github.com/tireder/betting-tips/services/panel/telemetry"
)

func SetupRoutes(router *gin.Engine, state *handlers.State, settings *config.Settings) {
	handlers.RegisterValidators()

	router.Use(middleware.RequestID())
	if settings.Server.EnableCORS {
		router.Use(middleware.CORS())
	}
	router.Use(otelgin.Middleware("betting-panel"))
	if state.Metrics != nil {
		router.Use(telemetry.MetricsMiddleware(state.Metrics))
	}

	router.GET("/health", handlers.HealthCheck)
	if h := telemetry.MetricsHandler(); h != nil {
		router.GET("/metrics", gin.WrapH(h))
	}
	router.StaticFS("/ui", http.Dir("/app/ui"))

	// Friendly redirect from the bare root to the dashboard
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/ui/index.html")
	})

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.GET("/fixtures", handlers.Fixtures(state))
		v1.GET("/fixtures/:id/full", handlers.FullMatch(state))
		v1.POST("/predictions", handlers.UploadPredictions(state))
		v1.GET("/predictions", handlers.Predictions(state))
		v1.POST("/analyze", handlers.Analyze(state))
		v1.GET("/tips", handlers.Tips(state))
		v1.GET("/accumulators", handlers.Accumulators(state))
		v1.GET("/report", handlers.Report(state))
		v1.GET("/live", handlers.LiveScores(state))
		v1.GET("/live/ws", handlers.LiveScoresWS(state))
		v1.GET("/teams/:id/form", handlers.TeamForm(state))
		// Analyst routes need an OpenAI key; they 503 without one
		analyst := v1.Group("/analyst")
		{
			analyst.POST("", handlers.AskAnalyst(state))
			analyst.POST("/match", handlers.MatchAnalysis(state))
		}
		// Cache administration routes
		cache := v1.Group("/cache")
		{
			cache.GET("/stats", handlers.CacheStats(state))
			cache.DELETE("", handlers.ClearCache(state))
		}
	}
}
