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

	"github.com/tireder/betting-tips/services/panel/predictions"
)

// maxPredictionsUpload caps the accepted CSV body at 10 MiB.
const maxPredictionsUpload = 10 << 20

// UploadPredictions ingests a model-predictions CSV and replaces the
// current row set. POST /v1/predictions (body: text/csv)
func UploadPredictions(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		reader := http.MaxBytesReader(c.Writer, c.Request.Body, maxPredictionsUpload)
		rows, err := predictions.LoadReader(reader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid predictions CSV", "details": err.Error()})
			return
		}
		if len(rows) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "CSV contains no usable prediction rows"})
			return
		}

		state.SetRows(rows)
		slog.Info("predictions uploaded", "rows", len(rows))
		c.JSON(http.StatusOK, gin.H{"status": "loaded", "rows": len(rows)})
	}
}

// Predictions returns the currently loaded prediction rows.
// GET /v1/predictions
func Predictions(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows := state.Rows()
		c.JSON(http.StatusOK, gin.H{"count": len(rows), "rows": rows})
	}
}
