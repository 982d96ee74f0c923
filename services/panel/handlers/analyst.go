// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AskRequest carries a free-form question for the AI analyst.
type AskRequest struct {
	Question string `json:"question" binding:"required,min=3,max=2000"`
}

// AskAnalyst answers a question about the current analyses through the
// LLM. Returns 503 when no OpenAI key was configured.
// POST /v1/analyst
func AskAnalyst(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		if state.Analyst == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI analyst is not configured"})
			return
		}

		var req AskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		_, analyses, _ := state.Results()
		answer, err := state.Analyst.Ask(c.Request.Context(), req.Question, analyses)
		if err != nil {
			state.countError(c.Request.Context(), "analyst")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Analyst request failed", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"question": req.Question, "answer": answer})
	}
}

// MatchAnalysis asks the LLM for a narrative read of one analyzed
// match, identified by its "Home vs Away" name.
// POST /v1/analyst/match
func MatchAnalysis(state *State) gin.HandlerFunc {
	type matchRequest struct {
		Match string `json:"match" binding:"required,matchname"`
	}
	return func(c *gin.Context) {
		if state.Analyst == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI analyst is not configured"})
			return
		}

		var req matchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		records, analyses, _ := state.Results()
		for i, a := range analyses {
			if a.Match != req.Match {
				continue
			}
			text, err := state.Analyst.AnalyzeMatch(c.Request.Context(), records[i], a)
			if err != nil {
				state.countError(c.Request.Context(), "analyst")
				c.JSON(http.StatusBadGateway, gin.H{"error": "Analyst request failed", "details": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"match": req.Match, "analysis": text})
			return
		}

		c.JSON(http.StatusNotFound, gin.H{"error": "Match not found in current analyses", "match": req.Match})
	}
}
