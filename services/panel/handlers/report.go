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
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tireder/betting-tips/services/panel/report"
)

// Report renders the full betting report from the last analysis run.
// GET /v1/report?format=md|html&archive=true
func Report(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, analyses, analyzedAt := state.Results()
		if len(records) == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "No analysis results; run an analysis first"})
			return
		}

		format := c.DefaultQuery("format", "md")
		if format != "md" && format != "html" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid format; expected md or html"})
			return
		}

		now := time.Now()
		topBets := state.Analyzer.TopBets(records, defaultTopBets, defaultMinOdds)
		accumulators := state.Analyzer.Accumulators(records, defaultLegs, defaultMinOdds)
		body := report.FullReport(records, analyses, topBets, accumulators, now)

		if state.Metrics != nil {
			state.Metrics.ReportsGeneratedTotal.Add(c.Request.Context(), 1)
		}

		if format == "md" {
			c.Header("X-Analyzed-At", analyzedAt.Format(time.RFC3339))
			c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(body))
			return
		}

		html, err := report.HTMLReport("Betting Tips Report", body, now)
		if err != nil {
			state.countError(c.Request.Context(), "report")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Report rendering failed", "details": err.Error()})
			return
		}

		if c.Query("archive") == "true" && state.Archiver != nil {
			name := "report-" + now.Format("150405")
			if path, err := state.Archiver.Archive(c.Request.Context(), name, html, now); err != nil {
				slog.Warn("report archive failed", "error", err)
			} else {
				c.Header("X-Report-Archive", path)
			}
		}

		c.Header("X-Analyzed-At", analyzedAt.Format(time.RFC3339))
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	}
}
