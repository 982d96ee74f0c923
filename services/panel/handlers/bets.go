// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultTopBets = 10
	defaultMinOdds = 1.5
	defaultLegs    = 3
)

// Tips returns the ranked single-bet recommendations from the last
// analysis run. GET /v1/tips?top=10&min_odds=1.5
func Tips(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, _, analyzedAt := state.Results()
		if len(records) == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "No analysis results; run an analysis first"})
			return
		}

		top, err := intQuery(c, "top", defaultTopBets)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid top parameter"})
			return
		}
		minOdds, err := floatQuery(c, "min_odds", defaultMinOdds)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_odds parameter"})
			return
		}

		bets := state.Analyzer.TopBets(records, top, minOdds)
		c.JSON(http.StatusOK, gin.H{
			"analyzed_at": analyzedAt,
			"min_odds":    minOdds,
			"count":       len(bets),
			"bets":        bets,
		})
	}
}

// Accumulators builds multi-leg combinations from the last analysis
// run. GET /v1/accumulators?legs=3&min_odds=1.5
func Accumulators(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, _, analyzedAt := state.Results()
		if len(records) == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "No analysis results; run an analysis first"})
			return
		}

		legs, err := intQuery(c, "legs", defaultLegs)
		if err != nil || legs < 2 || legs > 8 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid legs parameter; expected 2-8"})
			return
		}
		minOdds, err := floatQuery(c, "min_odds", defaultMinOdds)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_odds parameter"})
			return
		}

		accs := state.Analyzer.Accumulators(records, legs, minOdds)
		c.JSON(http.StatusOK, gin.H{
			"analyzed_at":  analyzedAt,
			"legs":         legs,
			"count":        len(accs),
			"accumulators": accs,
		})
	}
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	q := c.Query(name)
	if q == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(q)
	if err != nil || v <= 0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

func floatQuery(c *gin.Context, name string, fallback float64) (float64, error) {
	q := c.Query(name)
	if q == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(q, 64)
	if err != nil || v < 1.0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
