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
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tireder/betting-tips/pkg/validation"
	"github.com/tireder/betting-tips/services/panel/apifootball"
)

// Fixtures lists the curated upcoming fixtures for a date
// (default: today). GET /v1/fixtures?date=2025-08-30
func Fixtures(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := time.Now()
		if q := c.Query("date"); q != "" {
			if err := validation.ValidateDate(q); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date", "details": err.Error()})
				return
			}
			date, _ = time.Parse("2006-01-02", q)
		}

		fixtures, err := state.API.FetchWinnerFixtures(c.Request.Context(), date)
		if err != nil {
			slog.Error("fixture fetch failed", "date", date.Format("2006-01-02"), "error", err)
			state.countError(c.Request.Context(), "apifootball")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Fixture fetch failed", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"date":     date.Format("2006-01-02"),
			"count":    len(fixtures),
			"fixtures": fixtures,
		})
	}
}

// FullMatch returns the aggregated match view for one fixture:
// lineups, statistics, events, predictions, odds and head-to-head.
// GET /v1/fixtures/:id/full
func FullMatch(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fixture id"})
			return
		}

		fixtures, err := state.API.Fixtures(c.Request.Context(), apifootball.FixtureQuery{ID: id})
		if err != nil {
			state.countError(c.Request.Context(), "apifootball")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Fixture lookup failed", "details": err.Error()})
			return
		}
		if len(fixtures) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Fixture not found", "fixture_id": id})
			return
		}

		c.JSON(http.StatusOK, state.API.FullMatchData(c.Request.Context(), fixtures[0]))
	}
}
