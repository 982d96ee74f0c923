// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CacheStats reports the team history cache contents.
// GET /v1/cache/stats
func CacheStats(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := state.Store.Stats()
		if err != nil {
			state.countError(c.Request.Context(), "history")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Cache scan failed", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// ClearCache wipes the team history cache.
// DELETE /v1/cache
func ClearCache(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := state.Store.Clear(); err != nil {
			state.countError(c.Request.Context(), "history")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Cache clear failed", "details": err.Error()})
			return
		}
		slog.Info("team history cache cleared")
		c.JSON(http.StatusOK, gin.H{"status": "cleared"})
	}
}
